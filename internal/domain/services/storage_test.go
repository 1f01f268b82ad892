package services

import (
	"strings"
	"testing"
)

func TestCreateFolderRequestValidate(t *testing.T) {
	parent := "3f1c0a52-8e64-4a7d-9d7e-1a2b3c4d5e6f"

	tests := []struct {
		name    string
		req     CreateFolderRequest
		wantErr bool
	}{
		{"valid root folder", CreateFolderRequest{Name: "docs"}, false},
		{"valid nested folder", CreateFolderRequest{Name: "docs", ParentID: &parent}, false},
		{"empty name", CreateFolderRequest{Name: ""}, true},
		{"name with delimiter", CreateFolderRequest{Name: "a/b"}, true},
		{"name at length cap", CreateFolderRequest{Name: strings.Repeat("x", maxItemNameLength)}, false},
		{"name over length cap", CreateFolderRequest{Name: strings.Repeat("x", maxItemNameLength+1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUploadFileRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     UploadFileRequest
		wantErr bool
	}{
		{"valid", UploadFileRequest{Filename: "report.pdf"}, false},
		{"empty filename", UploadFileRequest{Filename: ""}, true},
		{"filename with delimiter", UploadFileRequest{Filename: "dir/file"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMoveItemRequestValidate(t *testing.T) {
	if err := (MoveItemRequest{ID: "some-id"}).Validate(); err != nil {
		t.Errorf("move to root should validate, got %v", err)
	}
	if err := (MoveItemRequest{}).Validate(); err == nil {
		t.Error("missing id should fail validation")
	}
}
