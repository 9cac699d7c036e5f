// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package http

import "net/http"

// responseWriter decorates [http.ResponseWriter] to capture the status code
// and body size for request logging. WriteHeader is forwarded to the
// underlying writer exactly once; later calls are ignored, matching the
// standard library contract.
type responseWriter struct {
	http.ResponseWriter

	status      int
	wroteHeader bool
	size        int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write implicitly reports http.StatusOK when the handler never called
// WriteHeader, like the standard library does.
func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}
