// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026 Pathwire authors.

package aggregator

import (
	"github.com/tinylib/msgp/msgp"
)

// StatsPayload, StatsBucket, StatsPoint and Backlog are the wire types
// flushed to the agent. Their MessagePack encoding is hand-written against
// msgp.Writer/msgp.Reader rather than generated (the msgp code generator
// can't be invoked here), but follows the same map-of-fixed-field-order
// shape the msgp generator produces: one fixmap per
// type, field names written as string keys in a fixed order that is part
// of the wire contract and must never change.
type StatsPayload struct {
	Env           string
	Service       string
	PrimaryTag    string
	Stats         []StatsBucket
	TracerVersion string
	Lang          string
}

type StatsBucket struct {
	Start    uint64
	Duration uint64
	Stats    []StatsPoint
	Backlogs []Backlog
}

type StatsPoint struct {
	Service        string // deprecated, always empty; kept for wire compatibility
	EdgeTags       []string
	Hash           uint64
	ParentHash     uint64
	PathwayLatency []byte
	EdgeLatency    []byte
	TimestampType  string
}

type Backlog struct {
	Tags  []string
	Value int64
}

const (
	timestampTypeCurrent = "current"
	timestampTypeOrigin  = "origin"
)

// EncodeMsg implements msgp.Encodable.
func (p *StatsPayload) EncodeMsg(en *msgp.Writer) (err error) {
	if err = en.WriteMapHeader(6); err != nil {
		return
	}
	if err = en.WriteString("Env"); err != nil {
		return
	}
	if err = en.WriteString(p.Env); err != nil {
		return msgp.WrapError(err, "Env")
	}
	if err = en.WriteString("Service"); err != nil {
		return
	}
	if err = en.WriteString(p.Service); err != nil {
		return msgp.WrapError(err, "Service")
	}
	if err = en.WriteString("PrimaryTag"); err != nil {
		return
	}
	if err = en.WriteString(p.PrimaryTag); err != nil {
		return msgp.WrapError(err, "PrimaryTag")
	}
	if err = en.WriteString("Stats"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(p.Stats))); err != nil {
		return msgp.WrapError(err, "Stats")
	}
	for i := range p.Stats {
		if err = p.Stats[i].EncodeMsg(en); err != nil {
			return msgp.WrapError(err, "Stats", i)
		}
	}
	if err = en.WriteString("TracerVersion"); err != nil {
		return
	}
	if err = en.WriteString(p.TracerVersion); err != nil {
		return msgp.WrapError(err, "TracerVersion")
	}
	if err = en.WriteString("Lang"); err != nil {
		return
	}
	if err = en.WriteString(p.Lang); err != nil {
		return msgp.WrapError(err, "Lang")
	}
	return nil
}

// DecodeMsg implements msgp.Decodable.
func (p *StatsPayload) DecodeMsg(dc *msgp.Reader) (err error) {
	n, err := dc.ReadMapHeader()
	if err != nil {
		return msgp.WrapError(err)
	}
	for ; n > 0; n-- {
		field, err := dc.ReadMapKeyPtr()
		if err != nil {
			return msgp.WrapError(err)
		}
		switch msgp.UnsafeString(field) {
		case "Env":
			if p.Env, err = dc.ReadString(); err != nil {
				return msgp.WrapError(err, "Env")
			}
		case "Service":
			if p.Service, err = dc.ReadString(); err != nil {
				return msgp.WrapError(err, "Service")
			}
		case "PrimaryTag":
			if p.PrimaryTag, err = dc.ReadString(); err != nil {
				return msgp.WrapError(err, "PrimaryTag")
			}
		case "Stats":
			sz, err := dc.ReadArrayHeader()
			if err != nil {
				return msgp.WrapError(err, "Stats")
			}
			p.Stats = make([]StatsBucket, sz)
			for i := range p.Stats {
				if err := p.Stats[i].DecodeMsg(dc); err != nil {
					return msgp.WrapError(err, "Stats", i)
				}
			}
		case "TracerVersion":
			if p.TracerVersion, err = dc.ReadString(); err != nil {
				return msgp.WrapError(err, "TracerVersion")
			}
		case "Lang":
			if p.Lang, err = dc.ReadString(); err != nil {
				return msgp.WrapError(err, "Lang")
			}
		default:
			if err := dc.Skip(); err != nil {
				return msgp.WrapError(err)
			}
		}
	}
	return nil
}

// EncodeMsg implements msgp.Encodable.
func (b *StatsBucket) EncodeMsg(en *msgp.Writer) (err error) {
	if err = en.WriteMapHeader(4); err != nil {
		return
	}
	if err = en.WriteString("Start"); err != nil {
		return
	}
	if err = en.WriteUint64(b.Start); err != nil {
		return msgp.WrapError(err, "Start")
	}
	if err = en.WriteString("Duration"); err != nil {
		return
	}
	if err = en.WriteUint64(b.Duration); err != nil {
		return msgp.WrapError(err, "Duration")
	}
	if err = en.WriteString("Stats"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(b.Stats))); err != nil {
		return msgp.WrapError(err, "Stats")
	}
	for i := range b.Stats {
		if err = b.Stats[i].EncodeMsg(en); err != nil {
			return msgp.WrapError(err, "Stats", i)
		}
	}
	if err = en.WriteString("Backlogs"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(b.Backlogs))); err != nil {
		return msgp.WrapError(err, "Backlogs")
	}
	for i := range b.Backlogs {
		if err = b.Backlogs[i].EncodeMsg(en); err != nil {
			return msgp.WrapError(err, "Backlogs", i)
		}
	}
	return nil
}

// DecodeMsg implements msgp.Decodable.
func (b *StatsBucket) DecodeMsg(dc *msgp.Reader) (err error) {
	n, err := dc.ReadMapHeader()
	if err != nil {
		return msgp.WrapError(err)
	}
	for ; n > 0; n-- {
		field, err := dc.ReadMapKeyPtr()
		if err != nil {
			return msgp.WrapError(err)
		}
		switch msgp.UnsafeString(field) {
		case "Start":
			if b.Start, err = dc.ReadUint64(); err != nil {
				return msgp.WrapError(err, "Start")
			}
		case "Duration":
			if b.Duration, err = dc.ReadUint64(); err != nil {
				return msgp.WrapError(err, "Duration")
			}
		case "Stats":
			sz, err := dc.ReadArrayHeader()
			if err != nil {
				return msgp.WrapError(err, "Stats")
			}
			b.Stats = make([]StatsPoint, sz)
			for i := range b.Stats {
				if err := b.Stats[i].DecodeMsg(dc); err != nil {
					return msgp.WrapError(err, "Stats", i)
				}
			}
		case "Backlogs":
			sz, err := dc.ReadArrayHeader()
			if err != nil {
				return msgp.WrapError(err, "Backlogs")
			}
			b.Backlogs = make([]Backlog, sz)
			for i := range b.Backlogs {
				if err := b.Backlogs[i].DecodeMsg(dc); err != nil {
					return msgp.WrapError(err, "Backlogs", i)
				}
			}
		default:
			if err := dc.Skip(); err != nil {
				return msgp.WrapError(err)
			}
		}
	}
	return nil
}

// EncodeMsg implements msgp.Encodable.
func (s *StatsPoint) EncodeMsg(en *msgp.Writer) (err error) {
	if err = en.WriteMapHeader(7); err != nil {
		return
	}
	if err = en.WriteString("Service"); err != nil {
		return
	}
	if err = en.WriteString(s.Service); err != nil {
		return msgp.WrapError(err, "Service")
	}
	if err = en.WriteString("EdgeTags"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(s.EdgeTags))); err != nil {
		return msgp.WrapError(err, "EdgeTags")
	}
	for _, t := range s.EdgeTags {
		if err = en.WriteString(t); err != nil {
			return msgp.WrapError(err, "EdgeTags")
		}
	}
	if err = en.WriteString("Hash"); err != nil {
		return
	}
	if err = en.WriteUint64(s.Hash); err != nil {
		return msgp.WrapError(err, "Hash")
	}
	if err = en.WriteString("ParentHash"); err != nil {
		return
	}
	if err = en.WriteUint64(s.ParentHash); err != nil {
		return msgp.WrapError(err, "ParentHash")
	}
	if err = en.WriteString("PathwayLatency"); err != nil {
		return
	}
	if err = en.WriteBytes(s.PathwayLatency); err != nil {
		return msgp.WrapError(err, "PathwayLatency")
	}
	if err = en.WriteString("EdgeLatency"); err != nil {
		return
	}
	if err = en.WriteBytes(s.EdgeLatency); err != nil {
		return msgp.WrapError(err, "EdgeLatency")
	}
	if err = en.WriteString("TimestampType"); err != nil {
		return
	}
	if err = en.WriteString(s.TimestampType); err != nil {
		return msgp.WrapError(err, "TimestampType")
	}
	return nil
}

// DecodeMsg implements msgp.Decodable.
func (s *StatsPoint) DecodeMsg(dc *msgp.Reader) (err error) {
	n, err := dc.ReadMapHeader()
	if err != nil {
		return msgp.WrapError(err)
	}
	for ; n > 0; n-- {
		field, err := dc.ReadMapKeyPtr()
		if err != nil {
			return msgp.WrapError(err)
		}
		switch msgp.UnsafeString(field) {
		case "Service":
			if s.Service, err = dc.ReadString(); err != nil {
				return msgp.WrapError(err, "Service")
			}
		case "EdgeTags":
			sz, err := dc.ReadArrayHeader()
			if err != nil {
				return msgp.WrapError(err, "EdgeTags")
			}
			s.EdgeTags = make([]string, sz)
			for i := range s.EdgeTags {
				if s.EdgeTags[i], err = dc.ReadString(); err != nil {
					return msgp.WrapError(err, "EdgeTags", i)
				}
			}
		case "Hash":
			if s.Hash, err = dc.ReadUint64(); err != nil {
				return msgp.WrapError(err, "Hash")
			}
		case "ParentHash":
			if s.ParentHash, err = dc.ReadUint64(); err != nil {
				return msgp.WrapError(err, "ParentHash")
			}
		case "PathwayLatency":
			if s.PathwayLatency, err = dc.ReadBytes(s.PathwayLatency); err != nil {
				return msgp.WrapError(err, "PathwayLatency")
			}
		case "EdgeLatency":
			if s.EdgeLatency, err = dc.ReadBytes(s.EdgeLatency); err != nil {
				return msgp.WrapError(err, "EdgeLatency")
			}
		case "TimestampType":
			if s.TimestampType, err = dc.ReadString(); err != nil {
				return msgp.WrapError(err, "TimestampType")
			}
		default:
			if err := dc.Skip(); err != nil {
				return msgp.WrapError(err)
			}
		}
	}
	return nil
}

// EncodeMsg implements msgp.Encodable.
func (b *Backlog) EncodeMsg(en *msgp.Writer) (err error) {
	if err = en.WriteMapHeader(2); err != nil {
		return
	}
	if err = en.WriteString("Tags"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(b.Tags))); err != nil {
		return msgp.WrapError(err, "Tags")
	}
	for _, t := range b.Tags {
		if err = en.WriteString(t); err != nil {
			return msgp.WrapError(err, "Tags")
		}
	}
	if err = en.WriteString("Value"); err != nil {
		return
	}
	if err = en.WriteInt64(b.Value); err != nil {
		return msgp.WrapError(err, "Value")
	}
	return nil
}

// DecodeMsg implements msgp.Decodable.
func (b *Backlog) DecodeMsg(dc *msgp.Reader) (err error) {
	n, err := dc.ReadMapHeader()
	if err != nil {
		return msgp.WrapError(err)
	}
	for ; n > 0; n-- {
		field, err := dc.ReadMapKeyPtr()
		if err != nil {
			return msgp.WrapError(err)
		}
		switch msgp.UnsafeString(field) {
		case "Tags":
			sz, err := dc.ReadArrayHeader()
			if err != nil {
				return msgp.WrapError(err, "Tags")
			}
			b.Tags = make([]string, sz)
			for i := range b.Tags {
				if b.Tags[i], err = dc.ReadString(); err != nil {
					return msgp.WrapError(err, "Tags", i)
				}
			}
		case "Value":
			if b.Value, err = dc.ReadInt64(); err != nil {
				return msgp.WrapError(err, "Value")
			}
		default:
			if err := dc.Skip(); err != nil {
				return msgp.WrapError(err)
			}
		}
	}
	return nil
}
