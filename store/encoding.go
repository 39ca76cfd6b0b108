package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Badger key layout. Components are separated by 0x00 so that prefix scans
// over a partition never bleed into a partition whose key merely starts with
// the same characters.
//
//	primary: "t" 0x00 PK 0x00 SK
//	index:   "i" 0x00 index 0x00 indexPK 0x00 indexSK 0x00 PK 0x00 SK
const keySeparator byte = 0x00

const (
	tablePrefix = "t"
	indexPrefix = "i"
)

func validKeyPart(s string) error {
	if strings.IndexByte(s, keySeparator) >= 0 {
		return fmt.Errorf("key component %q contains a NUL byte", s)
	}
	return nil
}

func joinKey(parts ...string) []byte {
	var buf bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			buf.WriteByte(keySeparator)
		}
		buf.WriteString(p)
	}
	return buf.Bytes()
}

func primaryKey(k Key) []byte {
	return joinKey(tablePrefix, k.PK, k.SK)
}

func indexKey(index, ipk, isk string, k Key) []byte {
	return joinKey(indexPrefix, index, ipk, isk, k.PK, k.SK)
}

// queryPrefix returns the badger prefix covering every entry the query can match.
func queryPrefix(q QueryInput) []byte {
	if q.Index == "" {
		return append(joinKey(tablePrefix, q.PK), append([]byte{keySeparator}, q.SKPrefix...)...)
	}
	return append(joinKey(indexPrefix, q.Index, q.PK), append([]byte{keySeparator}, q.SKPrefix...)...)
}

// serializableAV is a gob-encodable mirror of types.AttributeValue.
type serializableAV struct {
	Type  string
	Value any
}

func init() {
	gob.Register(map[string]serializableAV{})
	gob.Register([]serializableAV{})
	gob.Register([]string{})
	gob.Register([][]byte{})
}

func serializeItem(item Item) ([]byte, error) {
	m := make(map[string]serializableAV, len(item))
	for k, v := range item {
		av, err := toSerializable(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		m[k] = av
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}
	return buf.Bytes(), nil
}

func deserializeItem(data []byte) (Item, error) {
	var m map[string]serializableAV
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	item := make(Item, len(m))
	for k, v := range m {
		av, err := fromSerializable(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		item[k] = av
	}
	return item, nil
}

func toSerializable(av types.AttributeValue) (serializableAV, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return serializableAV{Type: "S", Value: v.Value}, nil
	case *types.AttributeValueMemberN:
		return serializableAV{Type: "N", Value: v.Value}, nil
	case *types.AttributeValueMemberB:
		return serializableAV{Type: "B", Value: v.Value}, nil
	case *types.AttributeValueMemberBOOL:
		return serializableAV{Type: "BOOL", Value: v.Value}, nil
	case *types.AttributeValueMemberNULL:
		return serializableAV{Type: "NULL", Value: v.Value}, nil
	case *types.AttributeValueMemberSS:
		return serializableAV{Type: "SS", Value: v.Value}, nil
	case *types.AttributeValueMemberNS:
		return serializableAV{Type: "NS", Value: v.Value}, nil
	case *types.AttributeValueMemberBS:
		return serializableAV{Type: "BS", Value: v.Value}, nil
	case *types.AttributeValueMemberL:
		l := make([]serializableAV, len(v.Value))
		for i, e := range v.Value {
			s, err := toSerializable(e)
			if err != nil {
				return serializableAV{}, err
			}
			l[i] = s
		}
		return serializableAV{Type: "L", Value: l}, nil
	case *types.AttributeValueMemberM:
		m := make(map[string]serializableAV, len(v.Value))
		for k, e := range v.Value {
			s, err := toSerializable(e)
			if err != nil {
				return serializableAV{}, err
			}
			m[k] = s
		}
		return serializableAV{Type: "M", Value: m}, nil
	default:
		return serializableAV{}, fmt.Errorf("unsupported attribute value %T", av)
	}
}

func fromSerializable(s serializableAV) (types.AttributeValue, error) {
	switch s.Type {
	case "S":
		return &types.AttributeValueMemberS{Value: s.Value.(string)}, nil
	case "N":
		return &types.AttributeValueMemberN{Value: s.Value.(string)}, nil
	case "B":
		return &types.AttributeValueMemberB{Value: s.Value.([]byte)}, nil
	case "BOOL":
		return &types.AttributeValueMemberBOOL{Value: s.Value.(bool)}, nil
	case "NULL":
		return &types.AttributeValueMemberNULL{Value: s.Value.(bool)}, nil
	case "SS":
		return &types.AttributeValueMemberSS{Value: s.Value.([]string)}, nil
	case "NS":
		return &types.AttributeValueMemberNS{Value: s.Value.([]string)}, nil
	case "BS":
		return &types.AttributeValueMemberBS{Value: s.Value.([][]byte)}, nil
	case "L":
		src := s.Value.([]serializableAV)
		l := make([]types.AttributeValue, len(src))
		for i, e := range src {
			av, err := fromSerializable(e)
			if err != nil {
				return nil, err
			}
			l[i] = av
		}
		return &types.AttributeValueMemberL{Value: l}, nil
	case "M":
		src := s.Value.(map[string]serializableAV)
		m := make(map[string]types.AttributeValue, len(src))
		for k, e := range src {
			av, err := fromSerializable(e)
			if err != nil {
				return nil, err
			}
			m[k] = av
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	default:
		return nil, fmt.Errorf("unknown serialized type %q", s.Type)
	}
}

// project keeps only the named attributes.
func project(item Item, names []string) Item {
	if len(names) == 0 {
		return item
	}
	out := make(Item, len(names))
	for _, n := range names {
		if v, ok := item[n]; ok {
			out[n] = v
		}
	}
	return out
}
