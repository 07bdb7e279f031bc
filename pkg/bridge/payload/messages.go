package payload

import "github.com/golang/protobuf/proto"

// SampleMsg is the protobuf form of a sample.
type SampleMsg struct {
	TimeUnixNano int64    `protobuf:"varint,1,opt,name=time_unix_nano,proto3" json:"time_unix_nano,omitempty"`
	Values       []uint32 `protobuf:"varint,2,rep,packed,name=values,proto3" json:"values,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *SampleMsg) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SampleMsg) Reset() { *m = SampleMsg{} }

// String implements proto.Message.
func (m *SampleMsg) String() string { return proto.CompactTextString(m) }

// CommandMsg is the protobuf form of a command.
type CommandMsg struct {
	Mask uint32 `protobuf:"varint,1,opt,name=mask,proto3" json:"mask,omitempty"`
	Rate uint32 `protobuf:"varint,2,opt,name=rate,proto3" json:"rate,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *CommandMsg) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandMsg) Reset() { *m = CommandMsg{} }

// String implements proto.Message.
func (m *CommandMsg) String() string { return proto.CompactTextString(m) }

// StateMsg is the protobuf form of the link state.
type StateMsg struct {
	Open       bool   `protobuf:"varint,1,opt,name=open,proto3" json:"open,omitempty"`
	Port       string `protobuf:"bytes,2,opt,name=port,proto3" json:"port,omitempty"`
	Generation uint64 `protobuf:"varint,3,opt,name=generation,proto3" json:"generation,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *StateMsg) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StateMsg) Reset() { *m = StateMsg{} }

// String implements proto.Message.
func (m *StateMsg) String() string { return proto.CompactTextString(m) }
