// Package control holds the feedback regulators used by motor-driven
// components.
package control
