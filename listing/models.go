package listing

import (
	"time"

	"github.com/uptrace/bun"
)

// Listing is one saved disassembly run.
type Listing struct {
	bun.BaseModel `bun:"table:listings"`

	ID        string `bun:",pk"`
	Name      string `bun:",notnull"`
	ISA       string
	Base      uint64
	Count     int
	Unknown   int
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// Line is a single rendered instruction of a Listing.
type Line struct {
	bun.BaseModel `bun:"table:listing_lines"`

	ID        int64  `bun:",pk,autoincrement"`
	ListingID string `bun:",notnull"`
	Seq       int    `bun:",notnull"`
	Address   uint64
	Word      uint32
	Mnemonic  string
	Text      string
}
