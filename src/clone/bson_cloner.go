// Package clone provides the default models.Cloner, built on a BSON
// marshal/unmarshal round trip the way the teacher's helpers package
// encodes and decodes documents through bson.Marshal/bson.Unmarshal.
package clone

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// BSONCloner deep-copies src onto dst by marshalling src to BSON and
// unmarshalling the bytes into dst. dst must be a pointer to the same
// struct type src points to (or src itself, for a self-refresh no-op). The
// round trip is slower than a hand-written per-field copy but needs no
// per-entity-type code, matching QueryRunner and UpdatePath's requirement
// for a default that works across arbitrary registered entity types.
type BSONCloner struct{}

// Clone implements models.Cloner.
func (BSONCloner) Clone(dst, src any) {
	data, err := bson.Marshal(src)
	if err != nil {
		panic(fmt.Errorf("clone: marshal source: %w", err))
	}
	if err := bson.Unmarshal(data, dst); err != nil {
		panic(fmt.Errorf("clone: unmarshal into destination: %w", err))
	}
}
