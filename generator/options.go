package generator

import "github.com/wippyai/marshalgen/opcode"

// Options controls procedure naming and which optional procedures are
// generated.
type Options struct {
	MarshalPrefix       string
	UnmarshalPrefix     string
	UnmarshalIntoPrefix string
	ReplySuffix         string
	StreamParam         string
	MarshalParam        string
	UnmarshalParam      string
	OpcodeBase          uint32
	InPlaceReaders      bool
	CommandReplies      bool
}

func DefaultOptions() Options {
	return Options{
		MarshalPrefix:       "marshal_",
		UnmarshalPrefix:     "unmarshal_",
		UnmarshalIntoPrefix: "unmarshal_into_",
		ReplySuffix:         "_reply",
		StreamParam:         "stream",
		MarshalParam:        "forMarshaling",
		UnmarshalParam:      "forUnmarshaling",
		OpcodeBase:          opcode.DefaultBase,
	}
}

// withDefaults fills empty names from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&o.MarshalPrefix, d.MarshalPrefix)
	fill(&o.UnmarshalPrefix, d.UnmarshalPrefix)
	fill(&o.UnmarshalIntoPrefix, d.UnmarshalIntoPrefix)
	fill(&o.ReplySuffix, d.ReplySuffix)
	fill(&o.StreamParam, d.StreamParam)
	fill(&o.MarshalParam, d.MarshalParam)
	fill(&o.UnmarshalParam, d.UnmarshalParam)
	if o.OpcodeBase == 0 {
		o.OpcodeBase = d.OpcodeBase
	}
	// Reply readers decode nested values in place.
	if o.CommandReplies {
		o.InPlaceReaders = true
	}
	return o
}

func (o Options) replyWriter(cmd string) string {
	return o.MarshalPrefix + "reply_" + cmd
}

func (o Options) replyReader(cmd string) string {
	return o.UnmarshalPrefix + "reply_" + cmd
}
