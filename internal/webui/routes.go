// Package webui serves read-only debug pages that dump the office state.
package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"mmt.ticketoffice.org/internal/app"
)

type WebUI struct {
	*app.Application
}

func (webUI *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/debug/", webUI.debugIndexHandler)
}
