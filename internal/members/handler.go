package members

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/members", h.CreateMember)
	r.GET("/members", h.ListMembers)
	r.GET("/members/search", h.SearchMembers)
	r.GET("/members/:id", h.GetMember)
	r.PUT("/members/:id", h.UpdateMember)
	r.DELETE("/members/:id", h.DeleteMember)
	r.PUT("/members/:id/active", h.SetActive)
}

func (h *Handler) CreateMember(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.CreateMember(c.Request.Context(), req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", "/members/"+res.ID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListMembers(c *gin.Context) {
	f := MemberFilter{}
	if v := c.Query("category"); v != "" {
		cat := Category(v)
		f.Category = &cat
	}
	if v := c.Query("active"); v == "true" || v == "1" {
		f.OnlyActive = true
	}
	res, err := h.svc.ListMembers(c.Request.Context(), f)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) SearchMembers(c *gin.Context) {
	res, err := h.svc.SearchMembers(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetMember(c *gin.Context) {
	res, err := h.svc.GetMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateMember(c *gin.Context) {
	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}
	res, err := h.svc.UpdateMember(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteMember(c *gin.Context) {
	if err := h.svc.DeleteMember(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "is_active is required"))
		return
	}
	res, err := h.svc.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive)
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
