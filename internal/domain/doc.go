// Package domain models Integrated Global Radiosonde Archive (IGRA) version 2
// sounding data and decodes its fixed-width text records.
//
// # Data Source
//
// IGRA v2 station files are published by NOAA NCEI as "<station>-data.txt"
// (usually zipped). Each file is a sequence of soundings: one header line
// followed by the level lines that belong to it.
//
// # Header Lines
//
// 71 columns, starting with '#':
//
//	#GRM00016622 2018 01 01 00 2333    2 ncdc-gts           405272   229714
//	 ^station    ^yr  mo dy hr ^rel ^nlev ^p-src  ^np-src   ^lat     ^lon
//
// Hour 99 means the observation hour is unknown; the observation time is set
// to 00:00 UTC and [Sounding.HourMissing] is true. Release time 9999 means no
// release time; a release minute of 99 means only the hour is known.
// Latitude and longitude are integers with four implied decimal places.
// Data-source codes belong to two separate code sets, see [PressureSource]
// and [NonPressureSource].
//
// # Level Lines
//
// 51 columns. Two type digits, then elapsed time (MMMSS), pressure (Pa),
// geopotential height (m), temperature, relative humidity, dew-point
// depression, wind direction and wind speed. Temperature, humidity, dew point
// and wind speed carry one implied decimal (tenths).
//
// Pressure, height and temperature are followed by a one-character quality
// flag:
//
//	' '  not checked by any climatology check
//	'A'  within tier-1 climatological limits
//	'B'  passed tier-1 and tier-2 checks
//
// Any other character decodes to [FlagError] with the value kept.
//
// # Sentinels
//
//	-8888  value removed by IGRA quality assurance  -> [FlagRemoved]
//	-9999  value missing prior to quality assurance -> [FlagMissing]
//
// A sentinel always wins over the adjacent flag character. Fields without a
// flag column decode to [FlagPassed] when a value is present. See [Flagged].
//
// # Errors
//
// Decode failures are *[DecodeError] values classified as [ErrStructural]
// (framing) or [ErrFormat] (field content).
package domain
