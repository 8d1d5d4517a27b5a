package httpserver

import (
	"log"
	"net/http"

	customersvc "crm-backend/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type customerAPI struct {
	svc    CustomerService
	logger *log.Logger
}

func (h *customerAPI) create(c *gin.Context) {
	var in customersvc.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequestField(c, "body", "invalid JSON body")
		return
	}

	created, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Customer not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Customer created", "customer": created})
}

func (h *customerAPI) list(c *gin.Context) {
	in := customersvc.ListInput{
		Page:    queryInt(c, "page", 1),
		Limit:   queryInt(c, "limit", 10),
		SortBy:  c.DefaultQuery("sortBy", "created_at"),
		Order:   c.DefaultQuery("order", "desc"),
		City:    c.Query("city"),
		State:   c.Query("state"),
		Pincode: c.Query("pincode"),
		Q:       c.Query("q"),
	}

	result, err := h.svc.List(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *customerAPI) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	customer, addresses, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer, "addresses": addresses})
}

func (h *customerAPI) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in customersvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequestField(c, "body", "invalid JSON body")
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer updated", "customer": updated})
}

func (h *customerAPI) remove(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
}

func (h *customerAPI) recomputeFlag(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	onlyOne, err := h.svc.RecomputeOnlyOneAddress(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Flag updated", "only_one_address": onlyOne})
}
