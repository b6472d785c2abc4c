package protocol

// the command is run at current /protocol folder

// Pipeline
//go:generate protoc --go_out=. --go_opt=paths=source_relative pipeline.proto --experimental_allow_proto3_optional
