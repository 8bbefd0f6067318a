package http

import (
	stdhttp "net/http"

	"github.com/sirupsen/logrus"
)

const maxLoginFormBytes = 4 << 10

// registerSessionRoutes mounts the login and logout form targets directly on
// the mux since they answer with redirects and cookies rather than bodies.
func (s *Server) registerSessionRoutes() {
	s.mux.HandleFunc("POST /admin/login", s.loginHandler)
	s.mux.HandleFunc("POST /admin/logout", s.logoutHandler)
}

func (s *Server) loginHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()
	if !s.auth.Enabled() {
		s.writeErrorPage(w, r, stdhttp.StatusNotFound, "Admin access is not configured on this site.")
		return
	}

	ip := clientIPFromRequest(r)
	if !s.loginLimiter.Allow(ip) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"component": "admin", "ip": ip}).Warn("login attempts throttled")
		}
		w.Header().Set("Retry-After", "60")
		s.writeErrorPage(w, r, stdhttp.StatusTooManyRequests, "Too many login attempts. Please wait a minute and try again.")
		return
	}

	r.Body = stdhttp.MaxBytesReader(w, r.Body, maxLoginFormBytes)
	if err := r.ParseForm(); err != nil {
		s.writeErrorPage(w, r, stdhttp.StatusBadRequest, "The login form could not be read.")
		return
	}

	if !s.auth.Verify(r.PostFormValue("password")) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"component": "admin", "ip": ip}).Warn("admin login rejected")
		}
		body, err := s.renderLogin(ctx, true)
		if err != nil {
			s.recordError(ctx, err, "rendering login page", nil)
			s.writeErrorPage(w, r, stdhttp.StatusInternalServerError, errorFallbackMessage)
			return
		}
		writeHTML(w, stdhttp.StatusUnauthorized, body)
		return
	}

	if err := s.auth.Login(w, r); err != nil {
		s.recordError(ctx, err, "starting admin session", nil)
		s.writeErrorPage(w, r, stdhttp.StatusInternalServerError, errorFallbackMessage)
		return
	}
	stdhttp.Redirect(w, r, "/admin", stdhttp.StatusSeeOther)
}

func (s *Server) logoutHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	if s.auth.Enabled() {
		if err := s.auth.Logout(w, r); err != nil {
			s.recordError(r.Context(), err, "clearing admin session", nil)
		}
	}
	stdhttp.Redirect(w, r, "/", stdhttp.StatusSeeOther)
}

func (s *Server) writeErrorPage(w stdhttp.ResponseWriter, r *stdhttp.Request, status int, message string) {
	resp, _ := s.renderErrorResponse(r.Context(), status, message)
	writeHTML(w, resp.Status, resp.Body)
}

func writeHTML(w stdhttp.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", htmlContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
