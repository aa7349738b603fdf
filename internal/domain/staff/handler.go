package staff

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nephro/dialysis/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/accounts", h.RegisterAccount)
	api.GET("/accounts", h.ListAccounts)
	api.GET("/accounts/:id", h.GetAccount)
	api.GET("/accounts/by-login/:login", h.GetAccountByLogin)
	api.PUT("/accounts/:id", h.UpdateAccount)
	api.PUT("/accounts/:id/active", h.SetActive)

	api.POST("/physicians", h.RegisterPhysician)
	api.POST("/nurses", h.RegisterNurse)
	api.POST("/aux-nurses", h.RegisterAuxNurse)
	api.POST("/admin-staff", h.RegisterAdminStaff)

	api.GET("/physicians", h.listRole(h.svc.ListPhysicians))
	api.GET("/nurses", h.listRole(h.svc.ListNurses))
	api.GET("/aux-nurses", h.listRole(h.svc.ListAuxNurses))
	api.GET("/admin-staff", h.listRole(h.svc.ListAdminStaff))
}

func (h *Handler) RegisterAccount(c echo.Context) error {
	var in RegisterAccountInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.RegisterAccount(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) RegisterPhysician(c echo.Context) error {
	var in RegisterPhysicianInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.RegisterPhysician(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) RegisterNurse(c echo.Context) error {
	var in RegisterNurseInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.RegisterNurse(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) RegisterAuxNurse(c echo.Context) error {
	var in RegisterAccountInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.RegisterAuxNurse(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) RegisterAdminStaff(c echo.Context) error {
	var in RegisterAccountInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.RegisterAdminStaff(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAccount(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) GetAccountByLogin(c echo.Context) error {
	a, err := h.svc.GetAccountByLogin(c.Request().Context(), c.Param("login"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAccounts(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAccounts(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateAccountInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.AccountID = id
	a, err := h.svc.UpdateAccount(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) SetActive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Active == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "active is required")
	}
	if err := h.svc.SetActive(c.Request().Context(), id, *body.Active); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listRole(list func(context.Context) ([]*Account, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		accounts, err := list(c.Request().Context())
		if err != nil {
			return err
		}
		if accounts == nil {
			accounts = []*Account{}
		}
		return c.JSON(http.StatusOK, accounts)
	}
}
