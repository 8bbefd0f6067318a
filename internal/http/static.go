package http

import (
	"embed"
	"fmt"
	"io/fs"
	stdhttp "net/http"

	"github.com/rotisserie/eris"
)

//go:embed static/*
var staticFiles embed.FS

func newStaticAssetHandler() (stdhttp.Handler, error) {
	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, eris.Wrap(err, "preparing static assets filesystem")
	}

	return stdhttp.StripPrefix("/static/", stdhttp.FileServer(stdhttp.FS(assets))), nil
}

func (s *Server) robotsHandler(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
	data, err := staticFiles.ReadFile("static/robots.txt")
	if err != nil {
		w.WriteHeader(stdhttp.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
	_, _ = fmt.Fprintf(w, "\nSitemap: %s/sitemap.xml\n", s.site.URL)
}

func (s *Server) registerStaticRoutes() {
	s.mux.HandleFunc("GET /robots.txt", s.robotsHandler)

	handler, err := newStaticAssetHandler()
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Error("registering static assets handler failed")
		}
		return
	}

	s.mux.Handle("GET /static/", handler)
}
