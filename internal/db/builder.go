package db

import (
	"errors"
	"fmt"
	"strings"
)

// IndexBuilder assembles an IndexDefinition field by field. Problems are
// collected as fields are added and reported together by Build.
type IndexBuilder struct {
	def  IndexDefinition
	errs []error
}

// NewIndex starts a HASH index definition named name.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name, StorageType: StorageHash}}
}

// Prefix limits the index to keys starting with any of prefixes.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	for _, p := range prefixes {
		if p == "" {
			b.errs = append(b.errs, errors.New("empty key prefix"))
			continue
		}
		b.def.Prefixes = append(b.def.Prefixes, p)
	}
	return b
}

// Tag indexes name for exact-match filtering.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldTag})
}

// Text indexes name for full-text matching.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText})
}

// VectorHNSW indexes name as a FLOAT32 vector of dim components. Zero m and
// efConstruct keep the engine defaults; an empty distance means cosine.
func (b *IndexBuilder) VectorHNSW(name string, dim int, distance DistanceMetric, m, efConstruct int) *IndexBuilder {
	if m < 0 || efConstruct < 0 {
		b.errs = append(b.errs, fmt.Errorf("vector %s: HNSW parameters must not be negative", name))
	}
	if distance == "" {
		distance = DistanceCosine
	}
	return b.add(IndexField{
		Name:              name,
		Type:              IndexFieldVector,
		VectorDim:         dim,
		VectorDistance:    distance,
		VectorM:           m,
		VectorEFConstruct: efConstruct,
	})
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build returns the definition or every problem found.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	errs := append([]error(nil), b.errs...)
	if err := b.def.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	def := b.def
	return &def, nil
}

// MustBuild is Build for definitions fixed at compile time.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String renders the schema in FT.CREATE order for logs.
func (idx *IndexDefinition) String() string {
	var sb strings.Builder
	sb.WriteString("FT.CREATE ")
	sb.WriteString(idx.Name)
	if idx.StorageType != "" {
		sb.WriteString(" ON " + string(idx.StorageType))
	}
	if len(idx.Prefixes) > 0 {
		sb.WriteString(" PREFIX " + strings.Join(idx.Prefixes, " "))
	}
	sb.WriteString(" SCHEMA")
	for i := range idx.Fields {
		sb.WriteString(" " + idx.Fields[i].Name + " " + idx.Fields[i].Type.String())
	}
	return sb.String()
}
