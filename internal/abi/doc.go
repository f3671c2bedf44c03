// Package abi holds the low-level pieces of the IntArray boundary shared by
// the libraries and the hosts: the allocation tracker behind every buffer a
// library hands out, packed pointer+length values, and the byte codec for
// the transfer struct and its members.
package abi
