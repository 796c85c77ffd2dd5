package stormcodec_test

import (
	"testing"

	"github.com/mdouchement/evidence/pkg/stormcodec"
	"github.com/stretchr/testify/assert"
)

type payload struct {
	Title  string
	CaseID uint32
	Hash   [4]byte
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"", "msgpack", "cbor", "binc"} {
		c, err := stormcodec.Lookup(name)
		assert.NoError(t, err, name)
		assert.NotNil(t, c, name)
	}

	_, err := stormcodec.Lookup("gob")
	assert.EqualError(t, err, `unsupported codec "gob"`)
}

func TestRoundTrip(t *testing.T) {
	v := payload{Title: "Burglary", CaseID: 42, Hash: [4]byte{1, 2, 3, 4}}

	for _, c := range []interface{ Name() string }{stormcodec.CBOR, stormcodec.Binc} {
		codec, err := stormcodec.Lookup(c.Name())
		assert.NoError(t, err)

		b, err := codec.Marshal(v)
		assert.NoError(t, err, codec.Name())

		var decoded payload
		err = codec.Unmarshal(b, &decoded)
		assert.NoError(t, err, codec.Name())
		assert.Equal(t, v, decoded, codec.Name())
	}
}
