// Package server implements an HTTP driver for a search session
package server

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/agent/linear/discrete/qlearning"
	"github.com/samuelfneumann/gridagent/agent/search/astar"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/experiment"
	"github.com/samuelfneumann/gridagent/export"
)

// Controller registers routes on a gin.RouterGroup
type Controller interface {
	Register(*gin.RouterGroup)
}

// SessionController exposes a single experiment.Session over HTTP.
// Requests are serialised, so that at most one step of the session's
// agent is in flight.
type SessionController struct {
	mu      sync.Mutex
	session *experiment.Session
}

// NewSessionController returns a new SessionController for s
func NewSessionController(s *experiment.Session) *SessionController {
	return &SessionController{session: s}
}

// Register registers the session routes
func (sc *SessionController) Register(route *gin.RouterGroup) {
	route.GET("/state", sc.state)
	route.POST("/step", sc.step)
	route.POST("/run", sc.run)
	route.POST("/restart", sc.restart)
	route.GET("/path", sc.path)
	route.GET("/values", sc.values)
	route.GET("/cells/:row/:col", sc.cell)
}

// state returns the state of the session
func (sc *SessionController) state(ctx *gin.Context) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	ctx.JSON(http.StatusOK, sc.stateResponse())
}

// step steps the agent the requested number of times, stopping early
// if the agent is done
func (sc *SessionController) step(ctx *gin.Context) {
	var request StepRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if request.Count == 0 {
		request.Count = 1
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	response := StepResponse{Steps: make([]TimeStepResponse, 0, request.Count)}
	for i := 0; i < request.Count; i++ {
		if sc.session.Agent().Done() {
			break
		}

		step, err := sc.session.Step()
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Steps = append(response.Steps, newTimeStepResponse(step))
	}
	response.State = sc.stateResponse()

	ctx.JSON(http.StatusOK, response)
}

// run runs the session until its search ends or the request is
// cancelled
func (sc *SessionController) run(ctx *gin.Context) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if err := sc.session.Run(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, sc.stateResponse())
}

// restart restarts the episode of a learner
func (sc *SessionController) restart(ctx *gin.Context) {
	var request RestartRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	l, ok := sc.session.Agent().(agent.Learner)
	if !ok {
		ctx.JSON(http.StatusBadRequest,
			gin.H{"error": experiment.ErrNotLearner.Error()})
		return
	}
	if err := l.RestartEpisode(request.From); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, sc.stateResponse())
}

// path returns the best path of a path finder
func (sc *SessionController) path(ctx *gin.Context) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	f, ok := sc.session.Agent().(agent.PathFinder)
	if !ok {
		ctx.JSON(http.StatusBadRequest,
			gin.H{"error": experiment.ErrNotPathFinder.Error()})
		return
	}

	path, err := f.BestPath()
	if errors.Is(err, astar.ErrNoPath) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	} else if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, PathResponse{Path: path})
}

// values returns the action values of a learner
func (sc *SessionController) values(ctx *gin.Context) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	l, ok := sc.session.Agent().(agent.Learner)
	if !ok {
		ctx.JSON(http.StatusBadRequest,
			gin.H{"error": experiment.ErrNotLearner.Error()})
		return
	}
	ctx.JSON(http.StatusOK,
		export.NewValuesDocument(sc.session.World(), l.ValueTable()))
}

// cell returns the summed action values of a cell of a learner
func (sc *SessionController) cell(ctx *gin.Context) {
	row, err := strconv.Atoi(ctx.Param("row"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid row"})
		return
	}
	col, err := strconv.Atoi(ctx.Param("col"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid column"})
		return
	}
	p := gridworld.Position{Row: row, Col: col}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	l, ok := sc.session.Agent().(agent.Learner)
	if !ok {
		ctx.JSON(http.StatusBadRequest,
			gin.H{"error": experiment.ErrNotLearner.Error()})
		return
	}

	sum, err := l.SumValueForCell(p)
	if errors.Is(err, gridworld.ErrOutOfBounds) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	} else if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := CellValueResponse{Cell: p, Sum: sum}
	if q, ok := l.(*qlearning.QLearning); ok {
		response.Illumination = qlearning.Illumination(sum, q.RewardValue())
	}
	ctx.JSON(http.StatusOK, response)
}

func (sc *SessionController) stateResponse() StateResponse {
	a := sc.session.Agent()
	training := false
	if l, ok := a.(agent.Learner); ok {
		training = l.IsTraining()
	}

	return StateResponse{
		ID:       sc.session.ID(),
		Agent:    string(sc.session.Type()),
		Cell:     a.CurrentCell(),
		Done:     a.Done(),
		Finished: sc.session.Finished(),
		Training: training,
		Steps:    sc.session.Steps(),
	}
}
