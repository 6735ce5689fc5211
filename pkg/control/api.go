/*
   CartFlash - cartridge flash save driver
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of CartFlash.

   CartFlash is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   CartFlash is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with CartFlash. If not, see <http://www.gnu.org/licenses/>.
*/

package control

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/xelalexv/cartflash/pkg/daemon"
)

// largest structure body accepted
const maxBodySize = 1048576

//
const jsonMediaType = "application/json"

//
type APIServer interface {
	Serve() error
	Stop() error
}

/*
	NewAPIServer creates the API server for daemon d. Structures can be
	persisted from files in repo when it is not empty. Flash chips only endure
	a limited number of erase cycles, so mutating requests are limited to
	writesPerMinute. A value <= 0 disables the limit.
*/
func NewAPIServer(addr, repo string, d *daemon.Daemon,
	writesPerMinute int) APIServer {

	wear := rate.NewLimiter(rate.Inf, 0)
	if writesPerMinute > 0 {
		wear = rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(writesPerMinute)),
			writesPerMinute)
	}

	if len(strings.Split(addr, ":")) < 2 {
		addr = fmt.Sprintf("%s:8888", addr)
	}

	ret := &api{address: addr, repository: repo, daemon: d, wear: wear}
	ret.server = &http.Server{Addr: addr, Handler: ret.router()}
	return ret
}

//
type api struct {
	address    string
	repository string
	daemon     *daemon.Daemon
	server     *http.Server
	wear       *rate.Limiter
}

// Serve blocks until the server is stopped. Stopping before serving is fine,
// Serve then returns right away.
func (a *api) Serve() error {
	log.Infof("CartFlash API starts listening on %s", a.address)
	err := a.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

//
func (a *api) Stop() error {
	log.Info("API server stopping...")
	return a.server.Shutdown(context.Background())
}

//
func (a *api) router() *mux.Router {

	router := mux.NewRouter().StrictSlash(true)

	addRoute(router, "status", "GET", "/status", a.status)
	addRoute(router, "identify", "GET", "/identify", a.identify)
	addRoute(router, "retrieve", "GET", "/structure", a.retrieve)
	addRoute(router, "persist", "PUT", "/structure", a.persist)
	addRoute(router, "erase", "PUT", "/erase", a.erase)
	addRoute(router, "dump", "GET", "/dump", a.dump)

	return router
}

//
func addRoute(r *mux.Router, name, method, pattern string,
	handler http.HandlerFunc) {
	r.Methods(method).
		Path(pattern).
		Name(name).
		Handler(requestLogger(handler, name))
}

//
func requestLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		log.WithFields(log.Fields{
			"remote": r.RemoteAddr,
			"method": r.Method,
			"path":   r.RequestURI,
		}).Debugf("API BEGIN | %s", name)

		start := time.Now()
		inner.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"remote":   r.RemoteAddr,
			"method":   r.Method,
			"path":     r.RequestURI,
			"duration": time.Since(start),
		}).Debugf("API END   | %s", name)
	})
}

//
func isFlagSet(req *http.Request, flag string) bool {
	arg, _ := getArg(req, flag)
	return arg == "true"
}

//
func getArg(req *http.Request, arg string) (string, error) {
	ret := req.URL.Query().Get(arg)
	if ret != "" {
		return url.QueryUnescape(ret)
	}
	return ret, nil
}

//
func setHeaders(h http.Header, json bool) {
	if json {
		h.Set("Content-Type", "application/json; charset=UTF-8")
	} else {
		h.Set("Content-Type", "text/plain; charset=UTF-8")
	}
}

//
func handleError(e error, statusCode int, w http.ResponseWriter) bool {

	if e == nil {
		return false
	}

	log.Errorf("%v", e)

	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(fmt.Sprintf("%v\n", e))); err != nil {
		log.Errorf("problem writing error: %v", err)
	}

	return true
}

//
func sendReply(body []byte, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), false)
	w.WriteHeader(statusCode)
	if _, err := fmt.Fprintf(w, "%s\n", body); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendJSONReply(obj interface{}, statusCode int, w http.ResponseWriter) {
	setHeaders(w.Header(), true)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		log.Errorf("problem writing reply: %v", err)
	}
}

//
func sendBinaryReply(r io.Reader, statusCode int, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(statusCode)
	if _, err := io.Copy(w, r); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

// wantsJSON is true if the request names JSON as its content type, lists it
// among the accepted types, or has the json flag set.
func wantsJSON(req *http.Request) bool {

	if t, _, err := mime.ParseMediaType(
		req.Header.Get("Content-Type")); err == nil && t == jsonMediaType {
		return true
	}

	for _, accept := range strings.Split(req.Header.Get("Accept"), ",") {
		if t, _, err := mime.ParseMediaType(
			strings.TrimSpace(accept)); err == nil && t == jsonMediaType {
			return true
		}
	}

	return isFlagSet(req, "json")
}
