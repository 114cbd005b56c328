// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition

import "strings"

// Type is the Android partition class derived from a partition name.
//
// It decides commit order and the on-disk type GUID.
type Type int

// Partition types.
const (
	TypeBasic Type = iota
	TypeSystem
	TypeCache
	TypeData
	TypeBoot
	TypeRecovery
	TypeMisc
	TypeMetadata
	TypeFactory
	TypeBootloader
	TypeBootloader2
	TypeFastboot
	TypeOEM
	TypePersistent
)

// TypeFor classifies a partition by exact, case-sensitive name.
func TypeFor(name string) Type {
	switch name {
	case "system", "vendor", "super", "product", "odm":
		return TypeSystem
	case "cache":
		return TypeCache
	case "userdata":
		return TypeData
	case "boot", "vendor_boot", "system_dlkm", "vendor_dlkm", "dtb", "dtbo", "vbmeta", "security":
		return TypeBoot
	case "recovery":
		return TypeRecovery
	case "misc":
		return TypeMisc
	case "metadata":
		return TypeMetadata
	case "factory", "backup":
		return TypeFactory
	case "uboot", "bootloader", "loader", "trust", "idbloader":
		return TypeBootloader
	case "stage2", "bootloader2", "loader2":
		return TypeBootloader2
	case "fastboot":
		return TypeFastboot
	case "oem":
		return TypeOEM
	case "persist":
		return TypePersistent
	default:
		return TypeBasic
	}
}

// FlagsFor returns the GPT attribute flags of a partition by name.
//
// No Android partition needs attributes set.
func FlagsFor(string) uint64 {
	return 0
}

// GUID returns the GPT partition type GUID.
func (t Type) GUID() string {
	switch t {
	case TypeSystem:
		return "38F428E6-D326-425D-9140-6E0EA133647C"
	case TypeCache:
		return "A893EF21-E428-470A-9E55-0668FD91A2D9"
	case TypeData:
		return "DC76DDA9-5AC1-491C-AF42-A82591580C0D"
	case TypeBoot:
		return "49A4D17F-93A3-45C1-A0DE-F50B2EBE2599"
	case TypeRecovery:
		return "4177C722-9E92-4AAB-8644-43502BFD5506"
	case TypeMisc:
		return "EF32A33B-A409-486C-9141-9FFB711F6266"
	case TypeMetadata:
		return "20AC26BE-20B7-11E3-84C5-6CFDB94711E9"
	case TypeFactory:
		return "8F68CC74-C5E5-48DA-BE91-A0C8C15E9C80"
	case TypeBootloader:
		return "2568845D-2332-4675-BC39-8FA5A4748D15"
	case TypeBootloader2:
		return "114EAFFE-1552-4022-B26E-9B053604CF84"
	case TypeFastboot:
		return "767941D0-2085-11E3-AD3B-6CFDB94711E9"
	case TypeOEM:
		return "AC6D7924-EB71-4DF8-B48D-E267B27148FF"
	case TypePersistent:
		return "EBC597D0-2053-4B15-8B64-E0AAC75F4DB1"
	default:
		// Microsoft basic data
		return "EBD0A0A2-B9E5-4433-87C0-68B6B72699C7"
	}
}

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case TypeSystem:
		return "system"
	case TypeCache:
		return "cache"
	case TypeData:
		return "data"
	case TypeBoot:
		return "boot"
	case TypeRecovery:
		return "recovery"
	case TypeMisc:
		return "misc"
	case TypeMetadata:
		return "metadata"
	case TypeFactory:
		return "factory"
	case TypeBootloader:
		return "bootloader"
	case TypeBootloader2:
		return "bootloader2"
	case TypeFastboot:
		return "fastboot"
	case TypeOEM:
		return "oem"
	case TypePersistent:
		return "persistent"
	default:
		return "basic"
	}
}

// TypeForGUID maps a type GUID back to its Type.
func TypeForGUID(guid string) (Type, bool) {
	for t := TypeBasic; t <= TypePersistent; t++ {
		if strings.EqualFold(t.GUID(), guid) {
			return t, true
		}
	}

	return TypeBasic, false
}
