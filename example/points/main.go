// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command points serves a small geometry API over JSON-RPC.
//
// Try it with:
//
//	curl -X POST localhost:8080/api/scale -d '{"p": {"x": 1, "y": 2}, "factor": 3}'
//	curl localhost:8080/api/openapi.json
package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexmojaki/instant-api/rpc"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type TranslateParams struct {
	P  Point `json:"p"`
	Dx int   `json:"dx"`
	Dy int   `json:"dy"`
}

type ScaleParams struct {
	P      Point `json:"p"`
	Factor int   `json:"factor"`
}

type Methods struct{}

func (Methods) Translate(ctx context.Context, params TranslateParams) (Point, error) {
	return Point{
		X: params.P.X + params.Dx,
		Y: params.P.Y + params.Dy,
	}, nil
}

func (Methods) Scale(ctx context.Context, params ScaleParams) (Point, error) {
	return Point{
		X: params.P.X * params.Factor,
		Y: params.P.Y * params.Factor,
	}, nil
}

func main() {
	api := rpc.NewApi("Point API", "v0.1.0")

	err := api.RegisterObject(Methods{}, rpc.Tags("Point methods"))
	if err != nil {
		slog.Error("failed to register methods", slog.Any("error", err))
		return
	}

	err = http.ListenAndServe(":8080", api)
	if err != nil {
		slog.Error("failed to serve", slog.Any("error", err))
	}
}
