// Package payload encodes samples, commands and link state for the bridges.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/adclink/pkg/frame"
	"github.com/robotalks/adclink/pkg/link"
)

// Codec converts between domain values and bridge payloads.
// Every Codec also accepts text commands (SET,<mask>,<rate>).
type Codec interface {
	Name() string
	EncodeSample(frame.Sample) ([]byte, error)
	DecodeSample([]byte) (frame.Sample, error)
	EncodeState(link.State) ([]byte, error)
	EncodeCommand(frame.Command) ([]byte, error)
	DecodeCommand([]byte) (frame.Command, error)
}

// Codecs.
var (
	JSON  Codec = jsonCodec{}
	Proto Codec = protoCodec{}
)

// CodecByName returns the Codec named json or proto.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "proto", "protobuf":
		return Proto, nil
	}
	return nil, fmt.Errorf("unknown payload codec %q", name)
}

func isTextCommand(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) >= 3 && bytes.EqualFold(data[:3], []byte("SET"))
}

func sampleFrom(at time.Time, values []uint32) (s frame.Sample, err error) {
	if len(values) != frame.Channels {
		return s, fmt.Errorf("%w: %d values", frame.ErrFieldCount, len(values))
	}
	for n, v := range values {
		if v > frame.MaxValue {
			return s, fmt.Errorf("%w: %d", frame.ErrOutOfRange, v)
		}
		s.Values[n] = uint16(v)
	}
	s.At = at
	return s, nil
}

func commandFrom(mask, rate uint32) (cmd frame.Command, err error) {
	if mask > 0xff || rate > 0xff {
		return cmd, fmt.Errorf("%w: mask=%d rate=%d", frame.ErrOutOfRange, mask, rate)
	}
	cmd = frame.Command{Mask: frame.ActuatorMask(mask), Rate: uint8(rate)}
	return cmd, cmd.Validate()
}

type jsonSample struct {
	Time   time.Time `json:"time"`
	Values []uint32  `json:"values"`
}

type jsonCommand struct {
	Mask uint32 `json:"mask"`
	Rate uint32 `json:"rate"`
}

type jsonState struct {
	Open       bool   `json:"open"`
	Port       string `json:"port,omitempty"`
	Generation uint64 `json:"generation"`
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) EncodeSample(s frame.Sample) ([]byte, error) {
	msg := jsonSample{Time: s.At, Values: make([]uint32, 0, frame.Channels)}
	for _, v := range s.Values {
		msg.Values = append(msg.Values, uint32(v))
	}
	return json.Marshal(&msg)
}

func (jsonCodec) DecodeSample(data []byte) (frame.Sample, error) {
	var msg jsonSample
	if err := json.Unmarshal(data, &msg); err != nil {
		return frame.Sample{}, err
	}
	return sampleFrom(msg.Time, msg.Values)
}

func (jsonCodec) EncodeState(st link.State) ([]byte, error) {
	return json.Marshal(&jsonState{Open: st.Open, Port: st.Port, Generation: st.Generation})
}

func (jsonCodec) EncodeCommand(cmd frame.Command) ([]byte, error) {
	return json.Marshal(&jsonCommand{Mask: uint32(cmd.Mask), Rate: uint32(cmd.Rate)})
}

func (jsonCodec) DecodeCommand(data []byte) (frame.Command, error) {
	if isTextCommand(data) {
		return decodeTextCommand(data)
	}
	var msg jsonCommand
	if err := json.Unmarshal(data, &msg); err != nil {
		return frame.Command{}, err
	}
	return commandFrom(msg.Mask, msg.Rate)
}

type protoCodec struct{}

func (protoCodec) Name() string { return "proto" }

func (protoCodec) EncodeSample(s frame.Sample) ([]byte, error) {
	msg := &SampleMsg{Values: make([]uint32, 0, frame.Channels)}
	if !s.At.IsZero() {
		msg.TimeUnixNano = s.At.UnixNano()
	}
	for _, v := range s.Values {
		msg.Values = append(msg.Values, uint32(v))
	}
	return proto.Marshal(msg)
}

func (protoCodec) DecodeSample(data []byte) (frame.Sample, error) {
	var msg SampleMsg
	if err := proto.Unmarshal(data, &msg); err != nil {
		return frame.Sample{}, err
	}
	var at time.Time
	if msg.TimeUnixNano != 0 {
		at = time.Unix(0, msg.TimeUnixNano)
	}
	return sampleFrom(at, msg.Values)
}

func (protoCodec) EncodeState(st link.State) ([]byte, error) {
	return proto.Marshal(&StateMsg{Open: st.Open, Port: st.Port, Generation: st.Generation})
}

func (protoCodec) EncodeCommand(cmd frame.Command) ([]byte, error) {
	return proto.Marshal(&CommandMsg{Mask: uint32(cmd.Mask), Rate: uint32(cmd.Rate)})
}

func (protoCodec) DecodeCommand(data []byte) (frame.Command, error) {
	if isTextCommand(data) {
		return decodeTextCommand(data)
	}
	var msg CommandMsg
	if err := proto.Unmarshal(data, &msg); err != nil {
		return frame.Command{}, err
	}
	return commandFrom(msg.Mask, msg.Rate)
}

func decodeTextCommand(data []byte) (frame.Command, error) {
	cmd, err := frame.DecodeCommand(data)
	if err != nil {
		return cmd, err
	}
	return cmd, cmd.Validate()
}
