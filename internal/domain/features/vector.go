package features

// Vector holds one value per schema column, in schema order.
type Vector struct {
	schema *Schema
	values []float64
}

// NewVector returns a zero-filled vector for schema.
func NewVector(schema *Schema) Vector {
	return Vector{schema: schema, values: make([]float64, schema.Len())}
}

// Set assigns name if the schema declares it and reports whether it did.
func (v Vector) Set(name string, value float64) bool {
	i := v.schema.Index(name)
	if i < 0 {
		return false
	}
	v.values[i] = value
	return true
}

// Get returns the value for name; ok is false if the schema lacks it.
func (v Vector) Get(name string) (float64, bool) {
	i := v.schema.Index(name)
	if i < 0 {
		return 0, false
	}
	return v.values[i], true
}

// Values returns the values in schema order. Callers must not modify it.
func (v Vector) Values() []float64 { return v.values }

// Schema returns the schema the vector is aligned to.
func (v Vector) Schema() *Schema { return v.schema }

// Map returns the vector keyed by column name.
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, len(v.values))
	for i, n := range v.schema.names {
		out[n] = v.values[i]
	}
	return out
}
