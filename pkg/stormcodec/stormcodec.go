// Package stormcodec provides the formats used to store records in a Storm database.
package stormcodec

import (
	"bytes"
	"fmt"

	"github.com/asdine/storm/v3/codec"
	"github.com/asdine/storm/v3/codec/msgpack"
	ugorji "github.com/ugorji/go/codec"
)

var (
	// CBOR encodes to and decodes from CBOR (Concise Binary Object Representation).
	// https://tools.ietf.org/html/rfc7049
	CBOR codec.MarshalUnmarshaler = &handleCodec{name: "cbor", handle: &ugorji.CborHandle{}}
	// Binc encodes to and decodes from Binc.
	// See https://github.com/ugorji/binc
	Binc codec.MarshalUnmarshaler = &handleCodec{name: "binc", handle: &ugorji.BincHandle{}}
	// Msgpack is the default Storm format.
	Msgpack codec.MarshalUnmarshaler = msgpack.Codec
)

// Lookup returns the codec registered under the given name.
// An empty name returns the default codec.
func Lookup(name string) (codec.MarshalUnmarshaler, error) {
	switch name {
	case "", Msgpack.Name():
		return Msgpack, nil
	case CBOR.Name():
		return CBOR, nil
	case Binc.Name():
		return Binc, nil
	}
	return nil, fmt.Errorf("unsupported codec %q", name)
}

type handleCodec struct {
	name   string
	handle ugorji.Handle
}

func (c *handleCodec) Marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := ugorji.NewEncoder(&b, c.handle)
	err := enc.Encode(v)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (c *handleCodec) Unmarshal(b []byte, v any) error {
	r := bytes.NewReader(b)
	dec := ugorji.NewDecoder(r, c.handle)
	return dec.Decode(v)
}

func (c *handleCodec) Name() string {
	return c.name
}
