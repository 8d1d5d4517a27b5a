package httpserver

import (
	"log"
	"net/http"

	"crm-backend/internal/domain"
	addresssvc "crm-backend/internal/service/address"
	"github.com/gin-gonic/gin"
)

type addressAPI struct {
	svc    AddressService
	logger *log.Logger
}

func (h *addressAPI) create(c *gin.Context) {
	var in addresssvc.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequestField(c, "body", "invalid JSON body")
		return
	}

	created, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Customer not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Address added", "address": created})
}

func (h *addressAPI) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in addresssvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequestField(c, "body", "invalid JSON body")
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err, "Address not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address updated", "address": updated})
}

func (h *addressAPI) remove(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Address not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

func (h *addressAPI) search(c *gin.Context) {
	in := addresssvc.SearchInput{
		City:    c.Query("city"),
		State:   c.Query("state"),
		Pincode: c.Query("pincode"),
	}

	results, err := h.svc.Search(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Address not found")
		return
	}
	if results == nil {
		results = []domain.Address{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *addressAPI) multipleAddresses(c *gin.Context) {
	results, err := h.svc.CustomersWithMultipleAddresses(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Address not found")
		return
	}
	if results == nil {
		results = []domain.CustomerAddressCount{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
