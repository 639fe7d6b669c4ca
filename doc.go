// Package scxml implements an embeddable SCXML (State Chart XML)
// interpreter: compile a document into its in-memory IR with
// package ir, then drive one running instance of it with package
// interp. Supporting packages provide the pluggable pieces the
// specification factors out as traits: package datamodel for the
// expression/data-model binding, package ioprocessor (and its
// scxmlprocessor/mqttprocessor/wsprocessor implementations) for
// <send>/<invoke> transport, package registry for cross-session
// lookup, and package timers for delayed <send>.
//
// See cmd/scxmlrun for a minimal host that runs a compiled document
// against line-delimited JSON on stdin/stdout.
package scxml
