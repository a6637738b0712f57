// Package navidrome triggers library rescans on a Navidrome server after
// maintenance jobs change files on disk.
package navidrome
