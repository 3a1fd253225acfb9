package server

import (
	"net/http"
	"time"

	"shellyboard/internal/core/domain"
	"shellyboard/internal/core/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const boardRequestTimeout = 30 * time.Second

type boardPayload struct {
	Rows           []domain.Row `json:"rows"`
	Loading        bool         `json:"loading"`
	LoadError      string       `json:"load_error,omitempty"`
	SortKey        string       `json:"sort_key"`
	SortDescending bool         `json:"sort_descending"`
}

type sortParams struct {
	Key string `json:"key"`
}

type entityParams struct {
	EntityId string `json:"entity_id"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)

	e.GET("/api/board", s.GetBoardHandler)
	e.POST("/api/board/refresh", s.RefreshBoardHandler)
	e.POST("/api/board/sort", s.SortBoardHandler)
	e.POST("/api/device/update", s.InstallUpdateHandler)
	e.POST("/api/device/reboot", s.PressRebootHandler)

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

func (s *Server) GetBoardHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetBoardRequest{}, boardRequestTimeout).Result()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorPayload{Error: err.Error()})
	}
	response, ok := res.(domain.GetBoardResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorPayload{Error: "unexpected response"})
	}
	return c.JSON(http.StatusOK, toBoardPayload(response))
}

// RefreshBoardHandler triggers a reload and returns immediately. A reload
// already in flight absorbs the request.
func (s *Server) RefreshBoardHandler(c echo.Context) error {
	s.rootContext.Send(s.masterActor, domain.LoadBoardRequest{})
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) SortBoardHandler(c echo.Context) error {
	var params sortParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, errorPayload{Error: "invalid request body"})
	}
	if !service.ValidSortKey(params.Key) {
		return c.JSON(http.StatusBadRequest, errorPayload{Error: "unknown sort key"})
	}
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.SortBoardRequest{Key: params.Key}, boardRequestTimeout).Result()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorPayload{Error: err.Error()})
	}
	response, ok := res.(domain.GetBoardResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorPayload{Error: "unexpected response"})
	}
	return c.JSON(http.StatusOK, toBoardPayload(response))
}

func (s *Server) InstallUpdateHandler(c echo.Context) error {
	var params entityParams
	if err := c.Bind(&params); err != nil || params.EntityId == "" {
		return c.JSON(http.StatusBadRequest, errorPayload{Error: "entity_id is required"})
	}
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.InstallUpdateRequest{EntityId: params.EntityId}, boardRequestTimeout).Result()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorPayload{Error: err.Error()})
	}
	response, ok := res.(domain.InstallUpdateResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorPayload{Error: "unexpected response"})
	}
	if response.HasResponseError() {
		return c.JSON(http.StatusBadGateway, errorPayload{Error: response.GetResponseError().Error()})
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) PressRebootHandler(c echo.Context) error {
	var params entityParams
	if err := c.Bind(&params); err != nil || params.EntityId == "" {
		return c.JSON(http.StatusBadRequest, errorPayload{Error: "entity_id is required"})
	}
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.PressRebootRequest{EntityId: params.EntityId}, boardRequestTimeout).Result()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorPayload{Error: err.Error()})
	}
	response, ok := res.(domain.PressRebootResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorPayload{Error: "unexpected response"})
	}
	if response.HasResponseError() {
		return c.JSON(http.StatusBadGateway, errorPayload{Error: response.GetResponseError().Error()})
	}
	return c.NoContent(http.StatusOK)
}

func toBoardPayload(r domain.GetBoardResponse) boardPayload {
	rows := r.Rows
	if rows == nil {
		rows = []domain.Row{}
	}
	return boardPayload{
		Rows:           rows,
		Loading:        r.Loading,
		LoadError:      r.LoadError,
		SortKey:        r.SortKey,
		SortDescending: r.SortDescending,
	}
}
