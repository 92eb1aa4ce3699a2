package feature

import "testing"

func TestHashNamesOrderSensitive(t *testing.T) {
	a := HashNames([]string{"region", "locale"})
	b := HashNames([]string{"locale", "region"})
	if a == b {
		t.Fatal("HashNames must be sensitive to name order")
	}
}

func TestHashNamesDeterministic(t *testing.T) {
	a := HashNames([]string{"region", "locale"})
	b := HashNames([]string{"region", "locale"})
	if a != b {
		t.Fatal("HashNames must be deterministic for the same name sequence")
	}
}

func TestHashValueDistinguishesNameAndValue(t *testing.T) {
	v1 := HashValue(Value{Name: "region", Value: 1})
	v2 := HashValue(Value{Name: "region", Value: 2})
	v3 := HashValue(Value{Name: "locale", Value: 1})
	if v1 == v2 {
		t.Fatal("HashValue must distinguish values under the same name")
	}
	if v1 == v3 {
		t.Fatal("HashValue must distinguish names carrying the same value")
	}
}

func TestHashPrefixAgreesOnEqualSlices(t *testing.T) {
	p1 := []Value{{Name: "region", Value: 1}, {Name: "locale", Value: 7}}
	p2 := []Value{{Name: "region", Value: 1}, {Name: "locale", Value: 7}}
	if HashPrefix(p1) != HashPrefix(p2) {
		t.Fatal("HashPrefix must be deterministic for equal value sequences")
	}
}

func TestHashPrefixOrderSensitive(t *testing.T) {
	a := HashPrefix([]Value{{Name: "region", Value: 1}, {Name: "locale", Value: 7}})
	b := HashPrefix([]Value{{Name: "locale", Value: 7}, {Name: "region", Value: 1}})
	if a == b {
		t.Fatal("HashPrefix must be sensitive to pair order")
	}
}

func TestHashPrefixLengthSensitive(t *testing.T) {
	full := []Value{{Name: "region", Value: 1}, {Name: "locale", Value: 7}}
	prefix := full[:1]
	if HashPrefix(full) == HashPrefix(prefix) {
		t.Fatal("HashPrefix must distinguish a full path from its own prefix")
	}
}
