package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const PageVersion = "1.0"

type homeHandler struct{}

func NewHomeHandler(r chi.Router) {
	handler := &homeHandler{}
	r.Get("/", handler.GetHome)
}

func (h *homeHandler) GetHome(w http.ResponseWriter, r *http.Request) {
	response := make(map[string]interface{})
	response["message"] = "Home Page for School Mongo Chapter"
	response["pageversion"] = PageVersion
	response["status"] = "OK"
	render.JSON(w, r, response)
}
