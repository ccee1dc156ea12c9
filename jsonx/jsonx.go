package jsonx

import (
	jsoniter "github.com/json-iterator/go"
)

var jsonx = jsoniter.ConfigCompatibleWithStandardLibrary

func Marshal(v interface{}) ([]byte, error) {
	return jsonx.Marshal(v)
}

// MarshalIndent is used by the CLI when printing records.
func MarshalIndent(v interface{}) ([]byte, error) {
	return jsonx.MarshalIndent(v, "", "  ")
}

func Unmarshal(data []byte, v interface{}) error {
	return jsonx.Unmarshal(data, v)
}
