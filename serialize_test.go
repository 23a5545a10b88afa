package marrow

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

// slowField delays its conversion so completion order differs from
// declaration order.
type slowField struct {
	baseField
	delay time.Duration
}

func (f slowField) Validate(any) error { return nil }

func (f slowField) ToNative(ctx context.Context, raw any) (any, error) {
	select {
	case <-time.After(f.delay):
		return raw, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f slowField) ToData(ctx context.Context, native any) (any, error) {
	return f.ToNative(ctx, native)
}

// failingField always fails conversion.
type failingField struct {
	baseField
}

func (f failingField) Validate(any) error { return nil }

func (f failingField) ToNative(context.Context, any) (any, error) {
	return nil, errors.New("boom")
}

func (f failingField) ToData(context.Context, any) (any, error) {
	return nil, errors.New("boom")
}

func fullName(_ context.Context, m *Model) (any, error) {
	first, _ := m.Get("first_name")
	last, _ := m.Get("last_name")
	return fmt.Sprintf("%v %v", first, last), nil
}

func TestToData_ProjectionDefaultOmission(t *testing.T) {
	ctx := context.Background()
	schema := NewSchema("doc").
		Field("title", String()).
		Field("body", String()).
		MustBuild()

	m := New(schema)
	if err := m.ImportData(ctx, map[string]any{"title": "hello", "body": ""}); err != nil {
		t.Fatal(err)
	}

	out, err := m.ToData(ctx)
	if err != nil {
		t.Fatalf("ToData() error: %v", err)
	}

	if _, ok := out.Get("body"); ok {
		t.Error("empty if-present field should be omitted")
	}
	if v, _ := out.Get("title"); v != "hello" {
		t.Errorf("title = %v, want hello", v)
	}
}

func TestToData_ProjectionAlways(t *testing.T) {
	ctx := context.Background()
	schema := NewSchema("doc").
		Field("title", String()).
		Field("subtitle", String(Project(ProjectAlways))).
		MustBuild()

	m := New(schema)
	if err := m.ImportData(ctx, map[string]any{"title": "hello"}); err != nil {
		t.Fatal(err)
	}

	out, err := m.ToData(ctx)
	if err != nil {
		t.Fatalf("ToData() error: %v", err)
	}

	v, ok := out.Get("subtitle")
	if !ok {
		t.Fatal("always-projected field should appear even when empty")
	}
	if v != nil {
		t.Errorf("subtitle = %v, want explicit nil", v)
	}
}

func TestToData_ProjectionNever(t *testing.T) {
	ctx := context.Background()
	schema := NewSchema("account").
		Field("email", String()).
		Field("password", Secret(HashSHA256)).
		MustBuild()

	m := New(schema)
	if err := m.ImportData(ctx, map[string]any{"email": "ron@example.com", "password": "hunter2"}); err != nil {
		t.Fatal(err)
	}

	out, err := m.ToData(ctx)
	if err != nil {
		t.Fatalf("ToData() error: %v", err)
	}
	if _, ok := out.Get("password"); ok {
		t.Error("never-projected field should not appear in ToData")
	}

	// The dump view still carries the stored hash.
	dump, err := m.ExportData(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := dump.Get("password"); v == nil || v == "hunter2" {
		t.Errorf("dump password = %v, want stored hash", v)
	}
}

func TestSerialize_ExportInclusion(t *testing.T) {
	ctx := context.Background()
	schema := NewSchema("person").
		Field("first_name", String()).
		Field("last_name", String()).
		Export("full_name", fullName).
		MustBuild()

	m := New(schema)
	if err := m.ImportData(ctx, map[string]any{"first_name": "Ron", "last_name": "Burgundy"}); err != nil {
		t.Fatal(err)
	}

	for _, mode := range []string{"data", "native"} {
		t.Run(mode, func(t *testing.T) {
			var out *Mapping
			var err error
			if mode == "data" {
				out, err = m.ToData(ctx)
			} else {
				out, err = m.ToNative(ctx)
			}
			if err != nil {
				t.Fatalf("serialize error: %v", err)
			}
			v, ok := out.Get("full_name")
			if !ok {
				t.Fatal("export should always be included")
			}
			if v != "Ron Burgundy" {
				t.Errorf("full_name = %v, want Ron Burgundy", v)
			}
		})
	}
}

func TestSerialize_OrderUnderConcurrency(t *testing.T) {
	ctx := context.Background()

	// Earlier fields take longer, so completion order is reversed
	// from declaration order.
	b := NewSchema("ordered")
	for i := 0; i < 8; i++ {
		delay := time.Duration(8-i) * 10 * time.Millisecond
		b.Field(fmt.Sprintf("f%d", i), slowField{delay: delay})
	}
	schema := b.MustBuild()

	m := New(schema)
	data := make(map[string]any, 8)
	for i := 0; i < 8; i++ {
		data[fmt.Sprintf("f%d", i)] = i + 1
	}
	if err := m.ImportData(ctx, data); err != nil {
		t.Fatal(err)
	}

	out, err := m.ToNative(ctx)
	if err != nil {
		t.Fatalf("ToNative() error: %v", err)
	}

	want := schema.Fields()
	if got := out.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want declaration order %v", got, want)
	}
}

func TestSerialize_FieldsThenExports(t *testing.T) {
	ctx := context.Background()
	schema := NewSchema("person").
		Field("first_name", String()).
		Field("last_name", String()).
		Export("full_name", fullName).
		MustBuild()

	m := New(schema)
	if err := m.ImportData(ctx, map[string]any{"first_name": "Ron", "last_name": "Burgundy"}); err != nil {
		t.Fatal(err)
	}

	out, err := m.ToData(ctx)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"first_name", "last_name", "full_name"}
	if got := out.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want fields then exports %v", got, want)
	}
}

func TestSerialize_ConversionErrorAborts(t *testing.T) {
	ctx := context.Background()
	schema := NewSchema("doc").
		Field("good", String()).
		Field("bad", failingField{}).
		MustBuild()

	m := New(schema)
	m.data["good"] = "ok"
	m.data["bad"] = "ok"

	out, err := m.ToData(ctx)
	if err == nil {
		t.Fatal("ToData() should fail when a conversion fails")
	}
	if out != nil {
		t.Error("no partial mapping should be returned")
	}
	if !errors.Is(err, ErrConversion) {
		t.Errorf("error = %v, want ErrConversion", err)
	}
}

func TestSerialize_ExportErrorAborts(t *testing.T) {
	ctx := context.Background()
	schema := NewSchema("doc").
		Field("title", String()).
		Export("broken", func(context.Context, *Model) (any, error) {
			return nil, errors.New("export boom")
		}).
		MustBuild()

	m := New(schema)
	if err := m.ImportData(ctx, map[string]any{"title": "hello"}); err != nil {
		t.Fatal(err)
	}

	out, err := m.ToData(ctx)
	if err == nil {
		t.Fatal("ToData() should fail when an export fails")
	}
	if out != nil {
		t.Error("no partial mapping should be returned")
	}

	var cerr *ConversionError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *ConversionError", err)
	}
	if cerr.Field != "broken" || cerr.Op != "export" {
		t.Errorf("ConversionError = %+v, want field broken, op export", cerr)
	}
}

func TestSerialize_DeadlineFailsWhole(t *testing.T) {
	schema := NewSchema("doc").
		Field("slow", slowField{delay: time.Second}).
		MustBuild()

	m := New(schema)
	m.data["slow"] = "v"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	out, err := m.ToData(ctx)
	if err == nil {
		t.Fatal("ToData() should fail when the deadline expires mid-serialization")
	}
	if out != nil {
		t.Error("no partial mapping should be returned")
	}
}

func TestSerialize_Recomputes(t *testing.T) {
	ctx := context.Background()
	calls := 0
	schema := NewSchema("counter").
		Export("n", func(context.Context, *Model) (any, error) {
			calls++
			return calls, nil
		}).
		MustBuild()

	m := New(schema)
	if _, err := m.ToData(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ToData(ctx); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("export invoked %d times, want 2 (no caching)", calls)
	}
}

func TestSerialize_NativeVsData(t *testing.T) {
	ctx := context.Background()
	when := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	schema := NewSchema("event").
		Field("at", Time()).
		MustBuild()

	m := New(schema)
	if err := m.ImportData(ctx, map[string]any{"at": when}); err != nil {
		t.Fatal(err)
	}

	native, err := m.ToNative(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := native.Get("at"); v != when {
		t.Errorf("native at = %v, want time.Time %v", v, when)
	}

	data, err := m.ToData(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := data.Get("at"); v != "2020-06-01T12:00:00Z" {
		t.Errorf("data at = %v, want RFC 3339 string", v)
	}
}
