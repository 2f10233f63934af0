package edit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/document"
	"github.com/rit3sh-x/mongoschema/core/model"
	"github.com/rit3sh-x/mongoschema/core/schema"
)

// Session is one load-modify-save cycle over a schema file.
type Session struct {
	Model *model.Model
	path  string
	extra map[string]json.RawMessage
	now   func() time.Time
}

// FieldSpec describes a field as given on the command line. Ref names the
// target collection; Default is parsed as JSON and falls back to a string.
type FieldSpec struct {
	Name      string
	Type      string
	ArrayType string
	Required  bool
	Unique    bool
	Index     bool
	Default   string
	Ref       string
}

func Open(path string, logger *zap.SugaredLogger) (*Session, error) {
	doc, err := document.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := model.New(model.WithLogger(logger))
	if err := doc.Apply(m); err != nil {
		return nil, err
	}
	return &Session{Model: m, path: path, extra: doc.Extra, now: time.Now}, nil
}

func (s *Session) Save() error {
	doc := document.FromModel(s.Model, s.now())
	doc.Extra = s.extra
	return doc.WriteFile(s.path)
}

func (s *Session) collection(name string) (schema.Collection, error) {
	col, ok := s.Model.CollectionByName(name)
	if !ok {
		return schema.Collection{}, &model.NotFoundError{Kind: "collection", Key: name}
	}
	return col, nil
}

func (s *Session) field(collectionName string, fieldName string) (schema.Collection, int, error) {
	col, err := s.collection(collectionName)
	if err != nil {
		return schema.Collection{}, -1, err
	}
	index := col.FieldIndex(fieldName)
	if index < 0 {
		return schema.Collection{}, -1, &model.NotFoundError{Kind: "field", Key: collectionName + "." + fieldName}
	}
	return col, index, nil
}

// Endpoint resolves "Collection.field". The last dot separates the field,
// since field names never contain one.
func (s *Session) Endpoint(ref string) (schema.Endpoint, error) {
	dot := strings.LastIndex(ref, ".")
	if dot <= 0 || dot == len(ref)-1 {
		return schema.Endpoint{}, fmt.Errorf("invalid field reference %q (expected Collection.field)", ref)
	}
	col, _, err := s.field(ref[:dot], ref[dot+1:])
	if err != nil {
		return schema.Endpoint{}, err
	}
	return schema.Endpoint{CollectionID: col.ID, Field: ref[dot+1:]}, nil
}

func (s *Session) AddCollection(name string, timestamps bool) (schema.Collection, error) {
	return s.Model.AddCollection(name, model.CollectionOptions{
		IncludeTimestamps: timestamps,
		IncludeCreatedAt:  timestamps,
		IncludeUpdatedAt:  timestamps,
	})
}

func (s *Session) RemoveCollection(name string) error {
	col, err := s.collection(name)
	if err != nil {
		return err
	}
	s.Model.RemoveCollection(col.ID)
	return nil
}

func (s *Session) RenameCollection(name string, newName string) error {
	col, err := s.collection(name)
	if err != nil {
		return err
	}
	return s.Model.UpdateCollection(col.ID, newName)
}

func (s *Session) DuplicateCollection(name string) (schema.Collection, error) {
	col, err := s.collection(name)
	if err != nil {
		return schema.Collection{}, err
	}
	dup, _ := s.Model.DuplicateCollection(col.ID)
	return dup, nil
}

func (s *Session) AddField(collectionName string, spec FieldSpec) error {
	col, err := s.collection(collectionName)
	if err != nil {
		return err
	}
	field, err := s.buildField(spec)
	if err != nil {
		return err
	}
	return s.Model.AddField(col.ID, field)
}

func (s *Session) RemoveField(collectionName string, fieldName string) error {
	col, index, err := s.field(collectionName, fieldName)
	if err != nil {
		return err
	}
	return s.Model.RemoveField(col.ID, index)
}

func (s *Session) MoveField(collectionName string, fieldName string, to int) error {
	col, index, err := s.field(collectionName, fieldName)
	if err != nil {
		return err
	}
	if to < 0 || to >= len(col.Fields) {
		return fmt.Errorf("position %d out of range 0..%d", to, len(col.Fields)-1)
	}
	return s.Model.ReorderFields(col.ID, index, to)
}

func (s *Session) Connect(source string, target string) (schema.Connection, error) {
	from, err := s.Endpoint(source)
	if err != nil {
		return schema.Connection{}, err
	}
	to, err := s.Endpoint(target)
	if err != nil {
		return schema.Connection{}, err
	}
	return s.Model.AddConnection(model.ConnectionRequest{Source: from, Target: to})
}

// Disconnect removes every connection between the two fields, in either
// direction, and returns how many were removed.
func (s *Session) Disconnect(source string, target string) (int, error) {
	from, err := s.Endpoint(source)
	if err != nil {
		return 0, err
	}
	to, err := s.Endpoint(target)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, conn := range s.Model.Connections() {
		if (conn.Source == from && conn.Target == to) || (conn.Source == to && conn.Target == from) {
			s.Model.RemoveConnection(conn.ID)
			removed++
		}
	}
	return removed, nil
}

func (s *Session) buildField(spec FieldSpec) (schema.Field, error) {
	field := schema.Field{
		Name:      spec.Name,
		Type:      constants.FieldType(spec.Type),
		ArrayType: constants.FieldType(spec.ArrayType),
		Required:  spec.Required,
		Unique:    spec.Unique,
		Index:     spec.Index,
	}

	if spec.Default != "" {
		var value interface{}
		if err := json.Unmarshal([]byte(spec.Default), &value); err != nil {
			value = spec.Default
		}
		field.DefaultValue = value
	}

	if spec.Ref != "" {
		target, err := s.collection(spec.Ref)
		if err != nil {
			return schema.Field{}, err
		}
		field.Ref = target.ID
	}
	return field, nil
}
