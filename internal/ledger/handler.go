package ledger

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/loans", h.Borrow)
	r.POST("/returns", h.Return)
	r.POST("/loans/:record_id/extend", h.Extend)

	r.GET("/loans", h.ActiveLoans)
	r.GET("/loans/overdue", h.Overdue)
	r.GET("/loans/statistics", h.Statistics)
	r.GET("/members/:id/loans", h.CurrentBorrows)
	r.GET("/members/:id/loans/history", h.BorrowHistory)
	r.GET("/members/:id/fine", h.TotalFine)
}

func (h *Handler) Borrow(c *gin.Context) {
	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.Borrow(c.Request.Context(), req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", "/loans/"+strconv.FormatInt(res.RecordID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Return(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.Return(c.Request.Context(), req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Extend(c *gin.Context) {
	recordID, err := strconv.ParseInt(c.Param("record_id"), 10, 64)
	if err != nil || recordID <= 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid record_id"))
		return
	}
	var req ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "additional_days is required"))
		return
	}
	res, err := h.svc.ExtendDueDate(c.Request.Context(), recordID, req.AdditionalDays)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ActiveLoans(c *gin.Context) {
	res, err := h.svc.ActiveLoans(c.Request.Context())
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Overdue(c *gin.Context) {
	var asOf time.Time
	if v := c.Query("as_of"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "as_of must be RFC3339"))
			return
		}
		asOf = t
	}
	res, err := h.svc.OverdueRecords(c.Request.Context(), asOf)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Statistics(c *gin.Context) {
	res, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CurrentBorrows(c *gin.Context) {
	res, err := h.svc.CurrentBorrows(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) BorrowHistory(c *gin.Context) {
	res, err := h.svc.BorrowHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) TotalFine(c *gin.Context) {
	res, err := h.svc.TotalFine(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	if de, ok := err.(*DomainError); ok {
		return errorBody(de.Code, de.Message)
	}
	return errorBody(CodeInternal, err.Error())
}
