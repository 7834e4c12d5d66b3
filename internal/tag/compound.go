package tag

// Compound is an ordered string-keyed map of Tags.
//
// Keys are unique. Setting an existing key replaces its value in place, so
// insertion order survives overwrites and round trips. The zero value is an
// empty, usable Compound.
type Compound struct {
	keys   []string
	values map[string]Tag
}

// NewCompound returns an empty Compound.
func NewCompound() *Compound {
	return &Compound{values: make(map[string]Tag)}
}

// Kind implements Tag.
func (*Compound) Kind() Kind { return KindCompound }
func (*Compound) sealed()    {}

// Set stores v under key. A nil v removes key.
//
// Postcondition: ContainsKey(key) == (v != nil).
func (c *Compound) Set(key string, v Tag) {
	if v == nil {
		c.Delete(key)
		return
	}
	if c.values == nil {
		c.values = make(map[string]Tag)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = v
}

// Delete removes key if present. A nil Compound is left alone.
func (c *Compound) Delete(key string) {
	if c == nil {
		return
	}
	if _, ok := c.values[key]; !ok {
		return
	}
	delete(c.values, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Get returns the value stored under key.
func (c *Compound) Get(key string) (Tag, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[key]
	return v, ok
}

// ContainsKey reports whether key is present.
func (c *Compound) ContainsKey(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Keys returns the keys in insertion order. The slice is a copy.
func (c *Compound) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Len returns the number of entries.
func (c *Compound) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// The typed getters below never fail. A missing key or a key holding a
// different variant yields the variant's zero value.

func (c *Compound) GetByte(key string) uint8 {
	v, _ := c.Get(key)
	b, _ := v.(Byte)
	return uint8(b)
}

func (c *Compound) GetBool(key string) bool {
	return c.GetByte(key) != 0
}

func (c *Compound) GetShort(key string) int16 {
	v, _ := c.Get(key)
	s, _ := v.(Short)
	return int16(s)
}

func (c *Compound) GetInt(key string) int32 {
	v, _ := c.Get(key)
	i, _ := v.(Int)
	return int32(i)
}

func (c *Compound) GetLong(key string) int64 {
	v, _ := c.Get(key)
	l, _ := v.(Long)
	return int64(l)
}

func (c *Compound) GetFloat(key string) float32 {
	v, _ := c.Get(key)
	f, _ := v.(Float)
	return float32(f)
}

func (c *Compound) GetDouble(key string) float64 {
	v, _ := c.Get(key)
	d, _ := v.(Double)
	return float64(d)
}

func (c *Compound) GetString(key string) string {
	v, _ := c.Get(key)
	s, _ := v.(String)
	return string(s)
}

func (c *Compound) GetByteArray(key string) []byte {
	v, _ := c.Get(key)
	b, _ := v.(ByteArray)
	return b
}

func (c *Compound) GetIntArray(key string) []int32 {
	v, _ := c.Get(key)
	a, _ := v.(IntArray)
	return a
}

// GetCompound returns the nested compound under key, or an empty one.
//
// Postcondition: the result is never nil.
func (c *Compound) GetCompound(key string) *Compound {
	v, _ := c.Get(key)
	if sub, ok := v.(*Compound); ok && sub != nil {
		return sub
	}
	return NewCompound()
}

// GetList returns the list under key, or an empty list.
//
// Postcondition: the result is never nil.
func (c *Compound) GetList(key string) *List {
	v, _ := c.Get(key)
	if l, ok := v.(*List); ok && l != nil {
		return l
	}
	return &List{}
}

// Equal reports whether c and o hold the same keys with equal values.
// Key order is not compared.
func (c *Compound) Equal(o *Compound) bool {
	if c.Len() != o.Len() {
		return false
	}
	for _, k := range c.Keys() {
		ov, ok := o.Get(k)
		if !ok {
			return false
		}
		cv, _ := c.Get(k)
		if !Equal(cv, ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of c preserving key order.
func (c *Compound) Clone() *Compound {
	out := NewCompound()
	if c == nil {
		return out
	}
	for _, k := range c.keys {
		out.Set(k, Clone(c.values[k]))
	}
	return out
}
