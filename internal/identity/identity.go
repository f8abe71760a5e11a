// Package identity derives the stable lead_id key used to join enrichment
// results back onto classified records.
package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// absent is the placeholder for a missing identity component. An empty
// string would let two different partial records collide on the separator.
const absent = "-"

// Key holds the four identity components of a record. Only these fields
// participate in the hash; everything else on a record may change without
// affecting its identity.
type Key struct {
	Name   string
	Zip    string
	Amount *float64
	Date   *time.Time
}

// Canonical renders the key in its hashed form, component order fixed.
func (k Key) Canonical() string {
	name := strings.Join(strings.Fields(strings.ToUpper(k.Name)), " ")
	if name == "" {
		name = absent
	}
	zip := strings.TrimSpace(k.Zip)
	if zip == "" {
		zip = absent
	}
	amount := absent
	if k.Amount != nil {
		amount = fmt.Sprintf("%.2f", *k.Amount)
	}
	date := absent
	if k.Date != nil {
		date = k.Date.Format("2006-01-02")
	}
	return name + "|" + zip + "|" + amount + "|" + date
}

// LeadID returns the hex digest of the canonical key. Identical component
// values always produce the identical id, across runs and machines.
func (k Key) LeadID() string {
	sum := sha1.Sum([]byte(k.Canonical()))
	return hex.EncodeToString(sum[:])
}
