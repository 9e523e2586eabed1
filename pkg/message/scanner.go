package message

import (
	"regexp"
	"strconv"
)

// Tolerant fallback extraction for nested payloads the strict decoder
// rejects (broken field types, truncated bodies, extra garbage). Each
// pattern pulls one key out of the raw text; absent keys stay nil so the
// normal precedence chains still apply.
var (
	scanType       = regexp.MustCompile(`"Type":\s*"([^"]*)"`)
	scanID         = regexp.MustCompile(`"Id":\s*"([^"]*)"`)
	scanRemoteJid  = regexp.MustCompile(`"RemoteJid":\s*"([^"]*)"`)
	scanSenderJid  = regexp.MustCompile(`"SenderJid":\s*"([^"]*)"`)
	scanText       = regexp.MustCompile(`"Text":\s*"([^"]*)"`)
	scanTimestamp  = regexp.MustCompile(`"Timestamp":\s*(\d+)`)
	scanFromMe     = regexp.MustCompile(`"FromMe":\s*(true|false)`)
	scanStatus     = regexp.MustCompile(`"Status":\s*(\d+)`)
	scanInstanceID = regexp.MustCompile(`"InstanceId":\s*"([^"]*)"`)

	scanInfoID        = regexp.MustCompile(`"Body":\s*\{[^}]*"Info":\s*\{[^}]*"Id":\s*"([^"]*)"`)
	scanInfoRemoteJid = regexp.MustCompile(`"Body":\s*\{[^}]*"Info":\s*\{[^}]*"RemoteJid":\s*"([^"]*)"`)
	scanInfoSenderJid = regexp.MustCompile(`"Body":\s*\{[^}]*"Info":\s*\{[^}]*"SenderJid":\s*"([^"]*)"`)
	scanInfoTimestamp = regexp.MustCompile(`"Body":\s*\{[^}]*"Info":\s*\{[^}]*"Timestamp":\s*(\d+)`)
	scanInfoFromMe    = regexp.MustCompile(`"Body":\s*\{[^}]*"Info":\s*\{[^}]*"FromMe":\s*(true|false)`)
	scanInfoStatus    = regexp.MustCompile(`"Body":\s*\{[^}]*"Info":\s*\{[^}]*"Status":\s*(\d+)`)
)

// scanNested rebuilds a nestedEvent from the raw text, tolerating unknown
// and malformed surroundings.
func scanNested(raw string) *nestedEvent {
	info := &nestedInfo{
		ID:        scanString(scanInfoID, raw),
		RemoteJid: scanString(scanInfoRemoteJid, raw),
		SenderJid: scanString(scanInfoSenderJid, raw),
		Timestamp: scanInt64(scanInfoTimestamp, raw),
		FromMe:    scanBool(scanInfoFromMe, raw),
		Status:    scanInt(scanInfoStatus, raw),
	}

	return &nestedEvent{
		Type:       scanString(scanType, raw),
		ID:         scanString(scanID, raw),
		RemoteJid:  scanString(scanRemoteJid, raw),
		SenderJid:  scanString(scanSenderJid, raw),
		Text:       scanString(scanText, raw),
		Timestamp:  scanInt64(scanTimestamp, raw),
		FromMe:     scanBool(scanFromMe, raw),
		Status:     scanInt(scanStatus, raw),
		InstanceID: scanString(scanInstanceID, raw),
		Body:       &nestedBody{Info: info},
	}
}

func scanString(re *regexp.Regexp, raw string) *string {
	match := re.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}
	return &match[1]
}

func scanInt64(re *regexp.Regexp, raw string) *int64 {
	match := re.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}
	v, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func scanInt(re *regexp.Regexp, raw string) *int {
	match := re.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}
	v, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	return &v
}

func scanBool(re *regexp.Regexp, raw string) *bool {
	match := re.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}
	v := match[1] == "true"
	return &v
}
