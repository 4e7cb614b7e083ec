package proto

import "encoding/json"

// JSONCodec marshals every request/response type in this package as JSON
// rather than a protocol-buffer wire format, registered under content-
// subtype "json" so grpc.Server/grpc.ClientConn negotiate it automatically
// (see SPEC_FULL.md's "Open Question resolution (gRPC marshalling)").
type JSONCodec struct{}

// Name reports the codec's registered name, matching google.golang.org/grpc's
// encoding.Codec contract.
func (JSONCodec) Name() string { return "json" }

// Marshal encodes v as JSON.
func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (JSONCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
