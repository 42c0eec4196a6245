package mount

import (
	"context"
	"encoding/json"
	"net/http"
)

type echoBody struct {
	Namespace string              `json:"namespace"`
	Project   string              `json:"project"`
	Method    string              `json:"method"`
	Path      string              `json:"path"`
	Query     map[string][]string `json:"query"`
	Header    map[string][]string `json:"header"`
	Body      string              `json:"body"`
}

// NewEcho is the Factory of the echo application, which answers every
// request with a JSON description of it.
func NewEcho(env *Env) (Application, error) {
	return ApplicationFunc(func(_ context.Context, req *Request) (*Response, error) {
		data, err := json.Marshal(echoBody{
			Namespace: env.Namespace,
			Project:   env.ProjectID,
			Method:    req.Method,
			Path:      req.Path,
			Query:     req.Query(),
			Header:    req.Header,
			Body:      string(req.Body),
		})
		if err != nil {
			return nil, err
		}
		h := http.Header{}
		h.Set("Content-Type", "application/json")
		return &Response{Status: http.StatusOK, Header: h, Body: data}, nil
	}), nil
}
