// Package relation declares the many-to-many relation between one primary
// record type and its related types, and derives every identifier the engine
// namespaces by: the relation key, the metadata slot, the instance id carried
// by attach/detach controls, route names and token scopes.
package relation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MixedSlot is the metadata slot suffix shared by every related type of a
// mixed relation.
const MixedSlot = "mixed"

const instancePrefix = "crud_related_instance_"

// Descriptor is an immutable relation declaration. Build it with Single or
// Mixed; the zero value is not usable.
type Descriptor struct {
	prefix  string
	primary string
	related []string
	mixed   bool
}

// Single declares a relation between primary and exactly one related type.
func Single(prefix, primary, related string) (Descriptor, error) {
	return build(prefix, primary, []string{related}, false)
}

// Mixed declares a relation whose related types share one relation list per
// primary record. A single related type is allowed; the relation still
// behaves as mixed because the caller asked for it.
func Mixed(prefix, primary string, related ...string) (Descriptor, error) {
	return build(prefix, primary, related, true)
}

// MustSingle panics when Single fails. Useful for init-time wiring.
func MustSingle(prefix, primary, related string) Descriptor {
	desc, err := Single(prefix, primary, related)
	if err != nil {
		panic(err)
	}
	return desc
}

// MustMixed panics when Mixed fails.
func MustMixed(prefix, primary string, related ...string) Descriptor {
	desc, err := Mixed(prefix, primary, related...)
	if err != nil {
		panic(err)
	}
	return desc
}

func build(prefix, primary string, related []string, mixed bool) (Descriptor, error) {
	prefix = strings.TrimSpace(prefix)
	primary = strings.TrimSpace(primary)
	if prefix == "" {
		return Descriptor{}, errors.New("relation: prefix is required")
	}
	if primary == "" {
		return Descriptor{}, errors.New("relation: primary type is required")
	}
	if len(related) == 0 {
		return Descriptor{}, errors.New("relation: at least one related type is required")
	}

	names := make([]string, 0, len(related))
	seen := make(map[string]struct{}, len(related))
	for _, name := range related {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return Descriptor{}, errors.New("relation: related type name is empty")
		}
		if strings.IndexFunc(trimmed, unicode.IsSpace) >= 0 {
			return Descriptor{}, fmt.Errorf("relation: related type %q contains whitespace", trimmed)
		}
		if _, dup := seen[trimmed]; dup {
			return Descriptor{}, fmt.Errorf("relation: related type %q declared twice", trimmed)
		}
		seen[trimmed] = struct{}{}
		names = append(names, trimmed)
	}

	return Descriptor{
		prefix:  prefix,
		primary: primary,
		related: names,
		mixed:   mixed,
	}, nil
}

// Prefix returns the namespace prefix.
func (d Descriptor) Prefix() string { return d.prefix }

// Primary returns the primary record type.
func (d Descriptor) Primary() string { return d.primary }

// Mixed reports whether the relation was declared over several types.
func (d Descriptor) Mixed() bool { return d.mixed }

// Related returns a copy of the related types in declaration order.
func (d Descriptor) Related() []string {
	return append([]string(nil), d.related...)
}

// Has reports whether typeName is one of the related types.
func (d Descriptor) Has(typeName string) bool {
	for _, name := range d.related {
		if name == typeName {
			return true
		}
	}
	return false
}

// Key is the relation key: the related type for single relations, the
// related types joined with "_" for mixed ones.
func (d Descriptor) Key() string {
	if d.mixed {
		return strings.Join(d.related, "_")
	}
	if len(d.related) == 0 {
		return ""
	}
	return d.related[0]
}

// Name identifies the relation among others sharing its prefix:
// "<prefix>/<primary>_<key>".
func (d Descriptor) Name() string {
	return d.prefix + "/" + d.primary + "_" + d.Key()
}

// MetaKey is the metadata-store key holding the relation list of a primary
// record. Mixed relations always use the shared "<prefix>_mixed" slot, so
// all of their related types land in one list.
func (d Descriptor) MetaKey() string {
	if d.mixed {
		return d.prefix + "_" + MixedSlot
	}
	return d.prefix + "_" + d.Key()
}

// InstanceID identifies this relation on the editing surface.
func (d Descriptor) InstanceID() string {
	if d.mixed {
		return instancePrefix + MixedSlot + "_" + d.Key()
	}
	return instancePrefix + d.Key()
}

// PrimaryScope is the token scope for attach, detach and list-attached.
func (d Descriptor) PrimaryScope() string {
	return d.prefix + "_" + d.primary + "_nonce"
}

// EditScope is the token scope for edit submissions of typeName.
func (d Descriptor) EditScope(typeName string) string {
	return d.prefix + "_" + typeName + "_nonce"
}

// String implements fmt.Stringer.
func (d Descriptor) String() string {
	return d.prefix + ":" + d.primary + "->" + d.Key()
}
