// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rpc

import (
	"encoding/json"
)

// Version is the protocol version tag carried by every envelope.
const Version = "2.0"

// Request is the JSON-RPC request envelope.
//
// ID distinguishes notifications from calls: a nil ID means the id member
// was absent and no response body is owed. An explicit null id is kept as
// the literal "null" and is echoed back like any other id.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Notification reports whether the request carries no id at all.
func (r *Request) Notification() bool {
	return r.ID == nil
}

// Response is the JSON-RPC response envelope. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

func resultResponse(id, result json.RawMessage) *Response {
	return &Response{
		JSONRPC: Version,
		Result:  result,
		ID:      id,
	}
}

func errorResponse(id json.RawMessage, eo *ErrorObject) *Response {
	return &Response{
		JSONRPC: Version,
		Error:   eo,
		ID:      id,
	}
}
