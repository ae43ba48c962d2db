package stockgrpc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// TrackStockRequest is stock.TrackStockRequest: field 1 product_id.
type TrackStockRequest struct {
	ProductID uint64
}

// StockUpdateResponse is stock.StockUpdateResponse: field 1 product_id,
// field 2 new_stock.
type StockUpdateResponse struct {
	ProductID uint64
	NewStock  int64
}

// Codec encodes the two stock messages in protobuf binary form. Unknown
// fields are skipped.
type Codec struct{}

func (Codec) Name() string {
	return "proto"
}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	switch m := v.(type) {
	case *TrackStockRequest:
		var b []byte
		b = appendVarint(b, 1, m.ProductID)
		return b, nil
	case *StockUpdateResponse:
		var b []byte
		b = appendVarint(b, 1, m.ProductID)
		b = appendVarint(b, 2, uint64(m.NewStock))
		return b, nil
	default:
		return nil, fmt.Errorf("stockgrpc: cannot marshal %T", v)
	}
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	switch m := v.(type) {
	case *TrackStockRequest:
		*m = TrackStockRequest{}
		return consumeVarints(data, func(num protowire.Number, val uint64) {
			if num == 1 {
				m.ProductID = val
			}
		})
	case *StockUpdateResponse:
		*m = StockUpdateResponse{}
		return consumeVarints(data, func(num protowire.Number, val uint64) {
			switch num {
			case 1:
				m.ProductID = val
			case 2:
				m.NewStock = int64(val)
			}
		})
	default:
		return fmt.Errorf("stockgrpc: cannot unmarshal into %T", v)
	}
}

// zero values are omitted, as proto3 does
func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func consumeVarints(b []byte, set func(num protowire.Number, val uint64)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if typ == protowire.VarintType {
			val, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			set(num, val)
			b = b[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}
