// Package rpc carries the agent protocol over gRPC. The service is declared
// by hand (no generated stubs) and messages are plain protocol structs
// encoded with CBOR.
package rpc

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/encoding"
)

// codecName is the gRPC content-subtype for CBOR payloads.
const codecName = "cbor"

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("rpc: CBOR encoder initialization failed: " + err.Error())
	}

	// Unknown fields are ignored so either side can add fields first.
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("rpc: CBOR decoder initialization failed: " + err.Error())
	}

	encoding.RegisterCodec(Codec{})
}

// Codec implements encoding.Codec with CBOR.
type Codec struct{}

// Marshal encodes v with Core Deterministic Encoding.
func (Codec) Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func (Codec) Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Name returns the content-subtype registered with gRPC.
func (Codec) Name() string {
	return codecName
}
