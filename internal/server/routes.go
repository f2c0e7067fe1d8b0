package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type itemsResponse struct {
	Items   []centralcontrol.Item `json:"items"`
	Failure string                `json:"failure,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/api/items", s.ItemsHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

// ItemsHandler relays an item enumeration to the gateway. Query parameters
// that are absent are left out of the call.
func (s *Server) ItemsHandler(c echo.Context) error {
	opts, err := itemListOptions(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetItemListRequest{Options: opts}, s.gatewayTimeout).Result()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	}
	response, ok := res.(domain.GetItemListResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "unexpected response"})
	}
	if response.HasResponseError() {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: response.GetResponseError().Error()})
	}
	body := itemsResponse{Items: response.Items}
	if body.Items == nil {
		body.Items = []centralcontrol.Item{}
	}
	if response.Failure != centralcontrol.FailureNone {
		body.Failure = response.Failure.String()
		return c.JSON(http.StatusBadGateway, body)
	}
	return c.JSON(http.StatusOK, body)
}

func itemListOptions(c echo.Context) (centralcontrol.ItemListOptions, error) {
	var opts centralcontrol.ItemListOptions
	params := c.QueryParams()
	if params.Has("item_type") {
		value := params.Get("item_type")
		opts.ItemType = &value
	}
	if params.Has("list_type") {
		value := centralcontrol.ListType(params.Get("list_type"))
		opts.ListType = &value
	}
	if params.Has("action") {
		value := params.Get("action")
		opts.Action = &value
	}
	if params.Has("parent_id") {
		id, err := strconv.Atoi(params.Get("parent_id"))
		if err != nil {
			return opts, fmt.Errorf("parent_id must be an integer: %w", err)
		}
		parent := centralcontrol.ItemId(id)
		opts.ParentId = &parent
	}
	return opts, nil
}
