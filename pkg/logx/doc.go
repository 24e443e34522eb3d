// Package logx is randpost's structured logging: a small Logger value on
// top of zerolog, with a readable console sink, a JSON file sink and an
// optional journald sink filtered by level and rate for systemd timers.
package logx
