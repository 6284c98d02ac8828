package main

import "testing"

func TestEmbeddedSource_StartsAtInitialSchema(t *testing.T) {
	src, err := embeddedSource()
	if err != nil {
		t.Fatalf("embedded source: %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil {
		t.Fatalf("first migration: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected first version 1, got %d", first)
	}

	up, identifier, err := src.ReadUp(first)
	if err != nil {
		t.Fatalf("read up: %v", err)
	}
	defer up.Close()
	if identifier != "init" {
		t.Fatalf("unexpected identifier %q", identifier)
	}
}

func TestVersionArg(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    uint
		wantErr bool
	}{
		{name: "valid", args: []string{"3"}, want: 3},
		{name: "trimmed", args: []string{" 1 "}, want: 1},
		{name: "missing", wantErr: true},
		{name: "negative", args: []string{"-1"}, wantErr: true},
		{name: "not a number", args: []string{"latest"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := versionArg(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("versionArg: %v", err)
			}
			if got != tt.want {
				t.Fatalf("versionArg=%d want=%d", got, tt.want)
			}
		})
	}
}
