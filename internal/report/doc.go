// Package report renders panel state as the text shown on the serial
// terminal and the character display.
package report
