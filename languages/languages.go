// Mapping of Windows language identifiers (LCIDs) to BCP 47 language
// tags. The tag selects the .mui resource overlay directory of a
// message file, for example C:\Windows\System32\en-US\wevtsvc.dll.mui.
package languages

import (
	"golang.org/x/text/language"
)

// DefaultLCID is en-US, the language used when no preference is
// configured or the configured LCID is unknown.
const DefaultLCID = uint32(0x0409)

// Language identifiers as defined in [MS-LCID]. Only the sub language
// neutral and the common fully qualified identifiers are listed, a
// lookup for an unlisted identifier falls back to its primary
// language.
var lcid_tags = map[uint32]string{
	0x0001: "ar",
	0x0401: "ar-SA",
	0x0801: "ar-IQ",
	0x0c01: "ar-EG",
	0x0002: "bg",
	0x0402: "bg-BG",
	0x0003: "ca",
	0x0403: "ca-ES",
	0x0004: "zh-Hans",
	0x0404: "zh-TW",
	0x0804: "zh-CN",
	0x0c04: "zh-HK",
	0x1004: "zh-SG",
	0x0005: "cs",
	0x0405: "cs-CZ",
	0x0006: "da",
	0x0406: "da-DK",
	0x0007: "de",
	0x0407: "de-DE",
	0x0807: "de-CH",
	0x0c07: "de-AT",
	0x0008: "el",
	0x0408: "el-GR",
	0x0009: "en",
	0x0409: "en-US",
	0x0809: "en-GB",
	0x0c09: "en-AU",
	0x1009: "en-CA",
	0x1409: "en-NZ",
	0x1809: "en-IE",
	0x000a: "es",
	0x040a: "es-ES",
	0x080a: "es-MX",
	0x000b: "fi",
	0x040b: "fi-FI",
	0x000c: "fr",
	0x040c: "fr-FR",
	0x080c: "fr-BE",
	0x0c0c: "fr-CA",
	0x100c: "fr-CH",
	0x000d: "he",
	0x040d: "he-IL",
	0x000e: "hu",
	0x040e: "hu-HU",
	0x000f: "is",
	0x040f: "is-IS",
	0x0010: "it",
	0x0410: "it-IT",
	0x0810: "it-CH",
	0x0011: "ja",
	0x0411: "ja-JP",
	0x0012: "ko",
	0x0412: "ko-KR",
	0x0013: "nl",
	0x0413: "nl-NL",
	0x0813: "nl-BE",
	0x0014: "no",
	0x0414: "nb-NO",
	0x0814: "nn-NO",
	0x0015: "pl",
	0x0415: "pl-PL",
	0x0016: "pt",
	0x0416: "pt-BR",
	0x0816: "pt-PT",
	0x0017: "rm",
	0x0417: "rm-CH",
	0x0018: "ro",
	0x0418: "ro-RO",
	0x0019: "ru",
	0x0419: "ru-RU",
	0x001a: "hr",
	0x041a: "hr-HR",
	0x001b: "sk",
	0x041b: "sk-SK",
	0x001c: "sq",
	0x041c: "sq-AL",
	0x001d: "sv",
	0x041d: "sv-SE",
	0x001e: "th",
	0x041e: "th-TH",
	0x001f: "tr",
	0x041f: "tr-TR",
	0x0020: "ur",
	0x0420: "ur-PK",
	0x0021: "id",
	0x0421: "id-ID",
	0x0022: "uk",
	0x0422: "uk-UA",
	0x0023: "be",
	0x0423: "be-BY",
	0x0024: "sl",
	0x0424: "sl-SI",
	0x0025: "et",
	0x0425: "et-EE",
	0x0026: "lv",
	0x0426: "lv-LV",
	0x0027: "lt",
	0x0427: "lt-LT",
	0x0029: "fa",
	0x0429: "fa-IR",
	0x002a: "vi",
	0x042a: "vi-VN",
	0x002b: "hy",
	0x042b: "hy-AM",
	0x002d: "eu",
	0x042d: "eu-ES",
	0x002f: "mk",
	0x042f: "mk-MK",
	0x0036: "af",
	0x0436: "af-ZA",
	0x0037: "ka",
	0x0437: "ka-GE",
	0x0038: "fo",
	0x0438: "fo-FO",
	0x0039: "hi",
	0x0439: "hi-IN",
	0x003e: "ms",
	0x043e: "ms-MY",
	0x003f: "kk",
	0x043f: "kk-KZ",
	0x0041: "sw",
	0x0441: "sw-KE",
	0x0045: "bn",
	0x0445: "bn-IN",
	0x0047: "gu",
	0x0447: "gu-IN",
	0x0049: "ta",
	0x0449: "ta-IN",
	0x004a: "te",
	0x044a: "te-IN",
	0x004e: "mr",
	0x044e: "mr-IN",
}

// GetLanguageTagForLCID returns the canonical language tag for a
// Windows language identifier. An unknown fully qualified identifier
// falls back to the neutral form of its primary language.
func GetLanguageTagForLCID(lcid uint32) (string, bool) {
	raw_tag, pres := lcid_tags[lcid]
	if !pres {
		// The low 10 bits carry the primary language.
		raw_tag, pres = lcid_tags[lcid&0x03ff]
	}
	if !pres {
		return "", false
	}

	tag, err := language.Parse(raw_tag)
	if err != nil {
		return raw_tag, true
	}
	return tag.String(), true
}
