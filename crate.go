package niidg

import "time"

// Fixed identifiers of the crate scaffolding.
const (
	// RootID is the id of the root data entity.
	RootID = "./"
	// MetadataID is the id of the metadata descriptor, which the serializer
	// regenerates; entities cannot claim it.
	MetadataID = "ro-crate-metadata.json"
)

const rootTypeName = "RootDataEntity"

// Crate is an in-memory RO-Crate: a root data entity plus every entity
// added to it, in insertion order.
type Crate struct {
	root     *Entity
	entities []*Entity
}

// CrateOpt configures crate construction.
type CrateOpt func(*crateConfig)

type crateConfig struct {
	created time.Time
}

// WithCreated pins the root's dateCreated timestamp, for reproducible
// serialization. The default is the current UTC time.
func WithCreated(t time.Time) CrateOpt {
	return func(c *crateConfig) { c.created = t.UTC() }
}

// New creates a crate with its root data entity in place. The root carries
// a dateCreated timestamp from the start; everything else is added by the
// caller.
func New(opts ...CrateOpt) *Crate {
	cfg := crateConfig{created: time.Now().UTC()}
	for _, opt := range opts {
		opt(&cfg)
	}
	schema, _ := Global().Lookup(ProfileBase, rootTypeName)
	root := newEntity(ProfileBase, rootTypeName, RootID, schema)
	root.props["dateCreated"] = cfg.created.Format(time.RFC3339)
	return &Crate{root: root}
}

// Add appends entities in order. An entity whose id collides with the root
// id, the metadata descriptor id, or an already added entity is rejected
// with a duplicate_id violation and the crate is left as it was; remaining
// entities of the same call are still considered. Add never validates
// property values.
func (c *Crate) Add(entities ...*Entity) error {
	var vs Violations
	for _, e := range entities {
		if e == nil {
			continue
		}
		if c.holds(e.id) {
			vs = AppendViolations(vs, NewViolation(e.id, "", CodeDuplicateID, map[string]any{"id": e.id}))
			continue
		}
		c.entities = append(c.entities, e)
	}
	return vs.AsError()
}

func (c *Crate) holds(id string) bool {
	if id == RootID || id == MetadataID {
		return true
	}
	for _, e := range c.entities {
		if e.id == id {
			return true
		}
	}
	return false
}

// Get returns the entity with the given id; the root resolves under its
// fixed id. The ok result distinguishes a dangling id from a nil entity.
func (c *Crate) Get(id string) (*Entity, bool) {
	if id == RootID {
		return c.root, true
	}
	for _, e := range c.entities {
		if e.id == id {
			return e, true
		}
	}
	return nil, false
}

// Root returns the root data entity.
func (c *Crate) Root() *Entity { return c.root }

// Entities returns the added entities in insertion order, root excluded.
func (c *Crate) Entities() []*Entity {
	out := make([]*Entity, len(c.entities))
	copy(out, c.entities)
	return out
}

// Len returns the number of added entities, root excluded.
func (c *Crate) Len() int { return len(c.entities) }

// GetByType returns the added entities of one profile and type, in
// insertion order.
func (c *Crate) GetByType(profile, name string) []*Entity {
	var out []*Entity
	for _, e := range c.entities {
		if e.profile == profile && e.typ == name {
			out = append(out, e)
		}
	}
	return out
}

// DataEntities returns the added entities whose schema kind is KindData,
// in insertion order. The serializer derives the root's hasPart from them.
func (c *Crate) DataEntities() []*Entity {
	var out []*Entity
	for _, e := range c.entities {
		if e.schema != nil && e.schema.Kind == KindData {
			out = append(out, e)
		}
	}
	return out
}
