package handler

import (
	"errors"
	"io"
	"net/http"
	"taskboard/internal/logger"
	"taskboard/internal/task"
	"taskboard/pkg"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	service task.Service
	log     logger.Logger
}

func NewTaskHandler(service task.Service, log logger.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		log:     log,
	}
}

func (h *TaskHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/tasks", h.getTasks)
	r.POST("/tasks", h.createTask)
	r.PUT("/tasks/:id", h.updateTask)
	r.DELETE("/tasks/:id", h.deleteTask)
}

func (h *TaskHandler) getTasks(c *gin.Context) {
	log := logger.FromContext(c.Request.Context()).With("where", "handler")

	tasks, err := h.service.ListTasks(c.Request.Context())
	if err != nil {
		log.Error("handler: error getting tasks", "error", err)
		pkg.WriteError(c, http.StatusInternalServerError, "error getting tasks")
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	log.Info("handler: tasks retrieved", "count", len(tasks))
	pkg.WriteJSON(c, http.StatusOK, tasks)
}

func (h *TaskHandler) createTask(c *gin.Context) {
	log := logger.FromContext(c.Request.Context()).With("where", "handler")

	var in task.Fields
	if err := bindFields(c, &in); err != nil {
		log.Debug("handler: error decoding request body", "error", err)
		pkg.WriteError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.CreateTask(c.Request.Context(), in)
	if err != nil {
		log.Error("handler: error creating task", "title", in.Title, "error", err)
		pkg.WriteError(c, http.StatusInternalServerError, "error creating task")
		return
	}
	log.Info("handler: task created successfully", "id", created.ID)
	pkg.WriteJSON(c, http.StatusCreated, created)
}

func (h *TaskHandler) updateTask(c *gin.Context) {
	log := logger.FromContext(c.Request.Context()).With("where", "handler")
	id := c.Param("id")

	var in task.Fields
	if err := bindFields(c, &in); err != nil {
		log.Debug("handler: error decoding request body", "id", id, "error", err)
		pkg.WriteError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateTask(c.Request.Context(), id, in)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			log.Info("handler: task to update not found", "id", id)
			pkg.WriteError(c, http.StatusNotFound, "Task not found")
			return
		}
		log.Error("handler: error updating task", "id", id, "error", err)
		pkg.WriteError(c, http.StatusInternalServerError, "error updating task")
		return
	}
	log.Info("handler: task updated successfully", "id", updated.ID)
	pkg.WriteJSON(c, http.StatusOK, updated)
}

func (h *TaskHandler) deleteTask(c *gin.Context) {
	log := logger.FromContext(c.Request.Context()).With("where", "handler")
	id := c.Param("id")

	if err := h.service.DeleteTask(c.Request.Context(), id); err != nil {
		log.Error("handler: error deleting task", "id", id, "error", err)
		pkg.WriteError(c, http.StatusInternalServerError, "error deleting task")
		return
	}
	log.Info("handler: task deleted", "id", id)
	pkg.WriteJSON(c, http.StatusOK, pkg.SuccessResponse{Success: true})
}

// bindFields decodes the JSON body into in. An empty body leaves in zero.
func bindFields(c *gin.Context, in *task.Fields) error {
	if err := c.ShouldBindJSON(in); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
