package eventlog

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var (
	// encMode writes canonical CBOR with nanosecond timestamps.
	encMode cbor.EncMode
	// decMode tolerates records written by older panel versions.
	decMode cbor.DecMode
)

func init() { //nolint:gochecknoinits // Codec modes are immutable and shared by all repositories.
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}

	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("create event log CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}

	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("create event log CBOR decoder mode: %v", err))
	}
}

func newEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

func newDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
