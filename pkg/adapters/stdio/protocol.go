package stdio

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"
)

// Host protocol methods.
const (
	MethodInitialize         = "ui/initialize"
	MethodInitialized        = "ui/notifications/initialized"
	MethodHostContextChanged = "ui/notifications/host-context-changed"
)

// ProtocolVersion is announced in the initialize request.
const ProtocolVersion = "2025-06-18"

// envelope is the union of every JSON-RPC message shape.
type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

func (e envelope) hasID() bool {
	return len(e.ID) > 0 && string(e.ID) != "null"
}

// idKey normalizes numeric and string IDs for matching.
func idKey(raw json.RawMessage) string {
	return strings.Trim(string(raw), `"`)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeParams struct {
	AppInfo         implementation `json:"appInfo"`
	AppCapabilities map[string]any `json:"appCapabilities"`
	ProtocolVersion string         `json:"protocolVersion"`
}

type initializeResult struct {
	ProtocolVersion  string         `json:"protocolVersion"`
	HostInfo         implementation `json:"hostInfo"`
	HostCapabilities map[string]any `json:"hostCapabilities"`
	HostContext      map[string]any `json:"hostContext,omitempty"`
}

// decodeNotificationContext extracts the partial host context carried by a
// host-context-changed notification.
func decodeNotificationContext(line []byte) (domain.HostContext, error) {
	var n mcp.JSONRPCNotification
	if err := json.Unmarshal(line, &n); err != nil {
		return domain.HostContext{}, fmt.Errorf("decode notification: %w", err)
	}
	return decodeHostContext(n.Params.AdditionalFields)
}

// decodeHostContext converts a loosely typed payload into a HostContext.
func decodeHostContext(raw map[string]any) (domain.HostContext, error) {
	var out domain.HostContext
	if len(raw) == 0 {
		return out, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &out,
		DecodeHook: stringToFontList,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(raw); err != nil {
		return domain.HostContext{}, fmt.Errorf("decode host context: %w", err)
	}
	return out, nil
}

var stringSliceType = reflect.TypeOf([]string(nil))

// stringToFontList accepts a single CSS string where a font list is expected.
func stringToFontList(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != stringSliceType {
		return data, nil
	}
	s, _ := data.(string)
	if strings.TrimSpace(s) == "" {
		return []string{}, nil
	}
	return []string{s}, nil
}

// encodeHostContext converts a HostContext to its wire form.
func encodeHostContext(hc domain.HostContext) (map[string]any, error) {
	data, err := json.Marshal(hc)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var jsonrpcVersion = mcp.JSONRPC_VERSION
