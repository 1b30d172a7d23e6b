package record

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type color string

var (
	testName    = NewKey[string]("name")
	testAge     = NewKey[int]("age")
	testUserID  = NewKey[string]("userId", Required())
	testVIP     = NewKey[bool]("vip").WithDefault(false)
	testColor   = NewKey[color]("color").WithDefault("blue")
	testFresh   = NewKey[bool]("fresh", Transient())
	testNick    = NewKey[string]("nickname", WithLegacyIDs("handle"))
	testAgeText = NewKey[string]("age")
)

func TestStorage_SetGetRemove(t *testing.T) {
	s := NewStorage()
	s.Set(testName.Bind("ada"), testAge.Bind(36))

	snap := s.Snapshot()
	if got, ok := testName.Get(snap); !ok || got != "ada" {
		t.Errorf("Get(name) = %q, %v; want ada, true", got, ok)
	}
	if got, ok := testAge.Get(snap); !ok || got != 36 {
		t.Errorf("Get(age) = %d, %v; want 36, true", got, ok)
	}

	s.Set(testName.BindOptional(nil))
	if s.Contains(testName) {
		t.Error("BindOptional(nil) should remove the key")
	}

	s.Remove(testAge)
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}

	// The earlier snapshot is unaffected.
	if !testName.In(snap) || !testAge.In(snap) {
		t.Error("snapshot must not observe later storage mutations")
	}
}

func TestStorage_MergeIdempotent(t *testing.T) {
	a := NewStorage().Set(testName.Bind("ada"), testAge.Bind(36))
	before := a.Snapshot()

	a.Merge(a.Clone(), true)

	if !a.Snapshot().Equal(before) {
		t.Error("merge(A, A, overwrite) should equal A")
	}
}

func TestStorage_MergeWithoutOverwrite(t *testing.T) {
	a := NewStorage().Set(testName.Bind("ada"))
	b := NewStorage().Set(testName.Bind("grace"), testAge.Bind(85))

	a.Merge(b, false)
	snap := a.Snapshot()

	if got := testName.Value(snap); got != "ada" {
		t.Errorf("name = %q, want ada", got)
	}
	if got := testAge.Value(snap); got != 85 {
		t.Errorf("age = %d, want 85", got)
	}

	a.Merge(b, true)
	if got := testName.Value(a.Snapshot()); got != "grace" {
		t.Errorf("name after overwrite = %q, want grace", got)
	}
}

func TestBuilder_DefaultsNeverShadow(t *testing.T) {
	got := NewBuilder().
		Set(testColor.Bind("red")).
		SetDefault(testColor.Bind("green")).
		Build()

	if v := testColor.Value(got); v != "red" {
		t.Errorf("color = %q, want red", v)
	}

	onlyDefault := NewBuilder().SetDefault(testColor.Bind("green")).Build()
	if v := testColor.Value(onlyDefault); v != "green" {
		t.Errorf("color = %q, want green", v)
	}
}

func TestBuilder_WithDefaultsRegistry(t *testing.T) {
	defaults := NewDefaults(testName, testVIP, testColor)
	if defaults.Len() != 2 {
		t.Fatalf("Defaults.Len() = %d, want 2", defaults.Len())
	}

	snap := NewBuilder(WithDefaults(defaults)).Set(testVIP.Bind(true)).Build()

	if v := testVIP.Value(snap); !v {
		t.Error("explicit vip=true must not be shadowed by default false")
	}
	if v, ok := testColor.Get(snap); !ok || v != "blue" {
		t.Errorf("color = %q, %v; want blue, true", v, ok)
	}
	if testName.In(snap) {
		t.Error("key without default must stay absent")
	}
}

func TestBuilder_EmptyBuild(t *testing.T) {
	snap := NewBuilder().Build()
	if !snap.IsEmpty() {
		t.Errorf("empty builder produced %d bindings", snap.Len())
	}
	if !snap.Equal(Empty()) {
		t.Error("empty build should equal Empty()")
	}
}

func TestBuilder_MergeAndClear(t *testing.T) {
	other := NewBuilder().Set(testName.Bind("grace"), testAge.Bind(85)).Build()

	b := NewBuilder().Set(testName.Bind("ada"))
	b.Merge(other, false)
	if v := testName.Value(b.Build()); v != "ada" {
		t.Errorf("name = %q, want ada", v)
	}
	if v := testAge.Value(b.Build()); v != 85 {
		t.Errorf("age = %d, want 85", v)
	}

	b.Merge(other, true)
	if v := testName.Value(b.Build()); v != "grace" {
		t.Errorf("name = %q, want grace", v)
	}

	if b.Clear().Len() != 0 {
		t.Error("Clear should drop every binding")
	}
}

func TestBuilder_MergeKeys(t *testing.T) {
	source := NewBuilder().Set(testName.Bind("ada"), testAge.Bind(36), testVIP.Bind(true)).Build()
	primary := NewKeySet(testName, testAge)

	got := NewBuilder().MergeKeys(primary, source).Build()

	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
	if testVIP.In(got) {
		t.Error("vip is not in the allow-list and must not be merged")
	}
}

func TestKey_RequiredAbsentPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if !strings.Contains(r.(string), "userId") {
			t.Errorf("panic = %v, want key identifier in message", r)
		}
	}()
	_ = testUserID.Value(Empty())
}

func TestKey_OptionalAbsentUsesDefault(t *testing.T) {
	if v := testColor.Value(Empty()); v != "blue" {
		t.Errorf("Value() = %q, want blue", v)
	}
	if v := testName.Value(Empty()); v != "" {
		t.Errorf("Value() = %q, want empty", v)
	}
}

func TestKey_WrongDynamicTypePanics(t *testing.T) {
	// Two keys sharing an identifier with different value types break the
	// storage invariant; the typed read must refuse it.
	snap := NewBuilder().Set(testAge.Bind(3)).Build()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on type mismatch")
		}
	}()
	_, _ = testAgeText.Get(snap)
}

func TestKey_Metadata(t *testing.T) {
	k := NewKey[string]("email", WithID("mail"), WithDisplayName("E-Mail"), WithCategory("contact"), Required())

	if k.ID() != "mail" || k.Name() != "E-Mail" || k.Category() != "contact" {
		t.Errorf("metadata = %q/%q/%q", k.ID(), k.Name(), k.Category())
	}
	if !k.Required() {
		t.Error("Required() = false")
	}
	if k.InitialValue() != InitialEmpty {
		t.Errorf("InitialValue() = %v, want empty", k.InitialValue())
	}
	if testVIP.InitialValue() != InitialDefault {
		t.Errorf("InitialValue() = %v, want default", testVIP.InitialValue())
	}
}

func TestNewKey_EmptyNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	_ = NewKey[int]("  ")
}

func TestSnapshot_Visitor(t *testing.T) {
	snap := NewBuilder().Set(testName.Bind("ada"), testAge.Bind(36)).Build()

	var ids []string
	var ages []int
	snap.Accept(VisitorFunc(func(key AnyKey, value any) {
		ids = append(ids, key.ID())
		VisitAs(key, value, func(k *Key[int], v int) {
			ages = append(ages, v)
		})
	}))

	if strings.Join(ids, ",") != "age,name" {
		t.Errorf("visited ids = %v, want [age name]", ids)
	}
	if len(ages) != 1 || ages[0] != 36 {
		t.Errorf("typed ages = %v, want [36]", ages)
	}

	var keys []string
	snap.AcceptKeys(KeyVisitorFunc(func(key AnyKey) {
		keys = append(keys, key.ID())
	}))
	if len(keys) != 2 {
		t.Errorf("AcceptKeys visited %d keys, want 2", len(keys))
	}
}

func TestSnapshot_FilterAndMissingRequired(t *testing.T) {
	snap := NewBuilder().Set(testName.Bind("ada"), testAge.Bind(36)).Build()
	keys := NewKeySet(testName, testUserID)

	filtered := snap.Filter(keys)
	if filtered.Len() != 1 || !testName.In(filtered) {
		t.Errorf("Filter() = %v keys, want [name]", filtered.Len())
	}

	missing := snap.MissingRequired(keys)
	if len(missing) != 1 || missing[0].ID() != "userId" {
		t.Errorf("MissingRequired() = %v, want [userId]", missing)
	}
}

func TestKeySet_Conflicts(t *testing.T) {
	var ks KeySet
	if err := ks.Add(testAge); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := ks.Add(testAge); err != nil {
		t.Errorf("re-adding the same key should be idempotent, got %v", err)
	}
	if err := ks.Add(testAgeText); !errors.Is(err, ErrKeyConflict) {
		t.Errorf("Add() error = %v, want ErrKeyConflict", err)
	}

	handle := NewKey[string]("handle")
	if err := ks.Add(testNick); err != nil {
		t.Fatalf("Add(nickname) error = %v", err)
	}
	if err := ks.Add(handle); !errors.Is(err, ErrKeyConflict) {
		t.Errorf("Add(handle) error = %v, want ErrKeyConflict", err)
	}

	if k, ok := ks.Resolve("handle"); !ok || k != AnyKey(testNick) {
		t.Errorf("Resolve(handle) = %v, %v", k, ok)
	}
}

func TestKeySet_CopiesAreIndependent(t *testing.T) {
	orig := NewKeySet(testName)
	cp := orig
	if err := cp.Add(testNick); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if orig.Len() != 1 || orig.ContainsID("nickname") {
		t.Errorf("source changed by copy: len=%d ids=%v", orig.Len(), orig.IDs())
	}
	if _, ok := orig.Resolve("handle"); ok {
		t.Error("source resolves a legacy id added to its copy")
	}
	if cp.Len() != 2 || !cp.Contains(testNick) {
		t.Errorf("copy = %v, want [name nickname]", cp.IDs())
	}

	if err := orig.Add(testAge); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if cp.ContainsID("age") {
		t.Error("copy changed by its source")
	}
	if got := orig.IDs(); strings.Join(got, ",") != "name,age" {
		t.Errorf("source ids = %v, want [name age]", got)
	}
}

func TestModification_Apply(t *testing.T) {
	base := NewBuilder().Set(testName.Bind("ada"), testAge.Bind(2)).Build()
	mod := NewModification(
		NewBuilder().Set(testName.Bind("grace")).Build(),
		NewBuilder().Set(testAge.Bind(2)).Build(),
	)

	got := mod.Apply(base.Builder()).Build()

	if v := testName.Value(got); v != "grace" {
		t.Errorf("name = %q, want grace", v)
	}
	if testAge.In(got) {
		t.Error("age should be removed")
	}
}

func TestModification_ModifiedWins(t *testing.T) {
	base := NewBuilder().Set(testName.Bind("ada")).Build()
	mod := NewModification(
		NewBuilder().Set(testName.Bind("grace")).Build(),
		NewBuilder().Set(testName.Bind("ada")).Build(),
	)

	if err := mod.Validate(); !errors.Is(err, ErrAmbiguousModification) {
		t.Errorf("Validate() = %v, want ErrAmbiguousModification", err)
	}

	got := mod.ApplyStorage(base.Storage()).Snapshot()
	if v, ok := testName.Get(got); !ok || v != "grace" {
		t.Errorf("name = %q, %v; want grace, true", v, ok)
	}
}

func TestModification_Keys(t *testing.T) {
	mod := NewModification(
		NewBuilder().Set(testName.Bind("a")).Build(),
		NewBuilder().Set(testAge.Bind(1)).Build(),
	)
	ks := mod.Keys()
	if ks.Len() != 2 || !ks.Contains(testName) || !ks.Contains(testAge) {
		t.Errorf("Keys() = %v, want [name age]", ks.IDs())
	}
	if mod.IsEmpty() {
		t.Error("IsEmpty() = true")
	}
	if !(Modification{}).IsEmpty() {
		t.Error("zero Modification should be empty")
	}
}

func TestNewKey_InterfaceValuePanics(t *testing.T) {
	tests := []struct {
		name string
		make func()
	}{
		{name: "any", make: func() { NewKey[any]("blob") }},
		{name: "error", make: func() { NewKey[error]("failure") }},
		{name: "fmt.Stringer", make: func() { NewKey[fmt.Stringer]("label") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic for interface value type")
				}
			}()
			tt.make()
		})
	}
}

func TestKey_ValueType(t *testing.T) {
	tests := []struct {
		key  AnyKey
		want string
	}{
		{key: testName, want: "string"},
		{key: testAge, want: "int"},
		{key: testColor, want: "record.color"},
		{key: NewKey[*color]("favorite"), want: "*record.color"},
	}
	for _, tt := range tests {
		if got := tt.key.ValueType(); got != tt.want {
			t.Errorf("%s.ValueType() = %q, want %q", tt.key.ID(), got, tt.want)
		}
	}
}
