package configfile

import (
	"github.com/mcoot/galapa/internal/codec"
)

// KnownFile describes a config file the game writes in its save folder
type KnownFile struct {
	Name string
	Seed int
	// UserKeyed files are encoded with the key derived from the username
	// instead of the fixed byte
	UserKeyed bool
}

// ObfuscatedName is the name the file has on disk
func (k KnownFile) ObfuscatedName() string {
	return codec.ObfuscateName(k.Name, k.Seed)
}

// Codec returns the byte codec for the file
func (k KnownFile) Codec(username string) codec.Factory {
	if k.UserKeyed {
		return codec.Username(username)
	}
	return codec.Fixed()
}

// Key returns the raw codec key for whole-buffer transforms
func (k KnownFile) Key(username string) []byte {
	if k.UserKeyed {
		key := codec.UsernameKey(username)
		return key[:]
	}
	return []byte{codec.FixedKey}
}

// Store opens the file in root
func (k KnownFile) Store(root, username string) *Store {
	return New(root, k.Name, k.Seed, k.Codec(username), "")
}

// KnownFiles lists every config file whose name and codec are known
var KnownFiles = []KnownFile{
	{Name: "KeyConfigFile.xml", Seed: 0x11},
	{Name: PlayerListName, Seed: PlayerListSeed, UserKeyed: true},
	{Name: "PadButtonCaption.win32.xml", Seed: 0x1a},
	{Name: "EnvironmentOption.win32.xml", Seed: 0x1b},
}

// Lookup finds a known file by its obfuscated on-disk name
func Lookup(obfuscatedName string) (KnownFile, bool) {
	for _, k := range KnownFiles {
		if k.ObfuscatedName() == obfuscatedName {
			return k, true
		}
	}
	return KnownFile{}, false
}

// LookupName finds a known file by its plain name
func LookupName(name string) (KnownFile, bool) {
	for _, k := range KnownFiles {
		if k.Name == name {
			return k, true
		}
	}
	return KnownFile{}, false
}
