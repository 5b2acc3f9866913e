// Copyright 2026 Oxide Computer Company

package compat

import "testing"

func TestBestPointer(t *testing.T) {
	cases := []struct {
		blessed, generated string
		want               ApiCompatPointer
	}{
		{
			"#/paths/~1users/get", "#/paths/~1users/get",
			ApiCompatPointer{Kind: PointerSame, Pointer: "#/paths/~1users/get"},
		},
		{
			"#/paths/~1users/get/responses", "#/paths/~1users/get",
			ApiCompatPointer{Kind: PointerBlessed, Pointer: "#/paths/~1users/get/responses"},
		},
		{
			"#/paths/~1users/get/responses/200", "#/paths/~1users/get",
			ApiCompatPointer{Kind: PointerBlessed, Pointer: "#/paths/~1users/get/responses/200"},
		},
		{
			"#/paths/~1users/get", "#/paths/~1users/get/responses",
			ApiCompatPointer{Kind: PointerGenerated, Pointer: "#/paths/~1users/get/responses"},
		},
		{
			"#/paths/~1users/get", "#/paths/~1users/get/responses/200/content",
			ApiCompatPointer{Kind: PointerGenerated, Pointer: "#/paths/~1users/get/responses/200/content"},
		},
		{
			"#/paths/~1users/get", "#/paths/~1accounts/get",
			ApiCompatPointer{Kind: PointerRename, BlessedPointer: "#/paths/~1users/get", GeneratedPointer: "#/paths/~1accounts/get"},
		},
		{
			"#/paths/~1users/post/requestBody", "#/paths/~1users/put/requestBody",
			ApiCompatPointer{Kind: PointerRename, BlessedPointer: "#/paths/~1users/post/requestBody", GeneratedPointer: "#/paths/~1users/put/requestBody"},
		},
		{
			"#/paths/~1user", "#/paths/~1users",
			ApiCompatPointer{Kind: PointerRename, BlessedPointer: "#/paths/~1user", GeneratedPointer: "#/paths/~1users"},
		},
	}

	for _, c := range cases {
		got := bestPointer(c.blessed, c.generated)
		if got != c.want {
			t.Errorf("bestPointer(%q, %q) = %+v, want %+v", c.blessed, c.generated, got, c.want)
		}
	}
}

func TestJSONPointerToJQ(t *testing.T) {
	cases := []struct{ input, want string }{
		{"#/paths/users", ".paths.users"},
		{"#/paths/~0users", `.paths."~users"`},
		{"#/paths/~1users", `.paths."/users"`},
		{"#/paths/~0users~1get", `.paths."~users/get"`},
		{"#/paths/~1users/get/responses/200", `.paths."/users".get.responses.200`},
		{"/paths/users", ".paths.users"},
		{"", "."},
		{"#", "."},
		{"#/paths/~1api~1v1~1users", `.paths."/api/v1/users"`},
		{"#/components/schemas/User~0Name~1Field", `.components.schemas."User~Name/Field"`},
	}

	for _, c := range cases {
		if got := jsonPointerToJQ(c.input); got != c.want {
			t.Errorf("jsonPointerToJQ(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestChangeClassString(t *testing.T) {
	cases := []struct {
		class ChangeClass
		want  string
	}{
		{ChangeBackwardIncompatible, "backward-incompatible "},
		{ChangeForwardIncompatible, "forward-incompatible "},
		{ChangeIncompatible, "incompatible "},
		{ChangeTrivial, "trivial "},
		{ChangeUnhandled, ""},
	}
	for _, c := range cases {
		if got := c.class.String(); got != c.want {
			t.Errorf("ChangeClass(%d).String() = %q, want %q", c.class, got, c.want)
		}
	}
}

func TestGetJSONValueWrapsInMap(t *testing.T) {
	spec := map[string]interface{}{
		"paths": map[string]interface{}{
			"/users": map[string]interface{}{
				"get": map[string]interface{}{"summary": "list users"},
			},
		},
	}

	value, ok := getJSONValue("#/paths/~1users/get", spec)
	if !ok {
		t.Fatal("expected pointer to resolve")
	}
	wrapped, ok := value.(map[string]interface{})
	if !ok {
		t.Fatalf("expected a wrapped map, got %T", value)
	}
	get, ok := wrapped["get"]
	if !ok {
		t.Fatalf("expected wrapper key %q, got %+v", "get", wrapped)
	}
	if _, ok := get.(map[string]interface{})["summary"]; !ok {
		t.Errorf("expected the looked-up value to be preserved, got %+v", get)
	}
}

func TestGetJSONValueMissingPointer(t *testing.T) {
	if _, ok := getJSONValue("#/paths/~1missing", map[string]interface{}{"paths": map[string]interface{}{}}); ok {
		t.Error("expected a missing pointer to report not-found")
	}
}
