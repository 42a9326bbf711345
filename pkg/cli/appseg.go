package cli

import (
	"encoding/binary"
	"fmt"
)

// AppSegment is a raw JPEG APPn marker segment (0xE0-0xEF), carrying
// whatever container metadata (JFIF, EXIF, XMP, ...) the source file
// had attached. LoadImage collects these so SaveImage can reattach them
// to a resynthesized output instead of silently dropping them.
type AppSegment struct {
	Marker  byte
	Payload []byte
}

// parseJPEGAppSegments walks the marker sequence of a JPEG byte stream
// and returns every APPn segment found before the start-of-scan marker,
// in file order.
func parseJPEGAppSegments(data []byte) ([]AppSegment, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, fmt.Errorf("not a JPEG file")
	}
	var segs []AppSegment
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == 0xDA { // start of scan: no more markers to read
			break
		}
		if marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			// markers without a length field
			i += 2
			continue
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if segLen < 2 || i+2+segLen > len(data) {
			return nil, fmt.Errorf("truncated JPEG segment at offset %d", i)
		}
		if marker >= 0xE0 && marker <= 0xEF {
			payload := make([]byte, segLen-2)
			copy(payload, data[i+4:i+2+segLen])
			segs = append(segs, AppSegment{Marker: marker, Payload: payload})
		}
		i += 2 + segLen
	}
	return segs, nil
}

// insertAppSegmentsIntoJPEG returns a copy of jpegBytes with segs
// inserted, in order, immediately after the SOI marker.
func insertAppSegmentsIntoJPEG(jpegBytes []byte, segs []AppSegment) ([]byte, error) {
	if len(jpegBytes) < 2 || jpegBytes[0] != 0xFF || jpegBytes[1] != 0xD8 {
		return nil, fmt.Errorf("not a JPEG file")
	}
	if len(segs) == 0 {
		out := make([]byte, len(jpegBytes))
		copy(out, jpegBytes)
		return out, nil
	}
	out := make([]byte, 0, len(jpegBytes)+len(segs)*8)
	out = append(out, jpegBytes[:2]...)
	for _, s := range segs {
		segLen := len(s.Payload) + 2
		if segLen > 0xFFFF {
			return nil, fmt.Errorf("app segment payload too large: %d bytes", len(s.Payload))
		}
		out = append(out, 0xFF, s.Marker, byte(segLen>>8), byte(segLen))
		out = append(out, s.Payload...)
	}
	out = append(out, jpegBytes[2:]...)
	return out, nil
}

// resetExifOrientation returns a copy of an APP1 EXIF payload with the
// IFD0 orientation tag (0x0112) rewritten to 1, leaving every other tag
// untouched. Used when the pixels have already been physically
// reoriented so the stale tag doesn't cause a second rotation on
// reload. Payloads without an orientation tag are returned unchanged.
func resetExifOrientation(payload []byte) []byte {
	if len(payload) < 6 || string(payload[:6]) != "Exif\x00\x00" {
		return payload
	}
	tiff := payload[6:]
	if len(tiff) < 8 {
		return payload
	}
	var order binary.ByteOrder
	switch {
	case tiff[0] == 'I' && tiff[1] == 'I':
		order = binary.LittleEndian
	case tiff[0] == 'M' && tiff[1] == 'M':
		order = binary.BigEndian
	default:
		return payload
	}
	ifd0Off := int(order.Uint32(tiff[4:8]))
	if ifd0Off < 0 || ifd0Off+2 > len(tiff) {
		return payload
	}
	n := int(order.Uint16(tiff[ifd0Off : ifd0Off+2]))

	out := make([]byte, len(payload))
	copy(out, payload)
	outTiff := out[6:]

	entriesBase := ifd0Off + 2
	for e := 0; e < n; e++ {
		entOff := entriesBase + e*12
		if entOff+12 > len(outTiff) {
			break
		}
		tag := order.Uint16(outTiff[entOff : entOff+2])
		if tag == 0x0112 {
			order.PutUint16(outTiff[entOff+8:entOff+10], 1)
			break
		}
	}
	return out
}

// withOrientationReset returns a copy of segs with any APP1 EXIF
// segment's orientation tag reset to 1.
func withOrientationReset(segs []AppSegment) []AppSegment {
	out := make([]AppSegment, len(segs))
	copy(out, segs)
	for i, s := range out {
		if s.Marker == 0xE1 {
			out[i].Payload = resetExifOrientation(s.Payload)
		}
	}
	return out
}
