package dataset

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"traffic-forecast-api/models"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint digests the observations in load order. Two loads of the same
// data produce the same value, which makes it usable as a model version.
func Fingerprint(records []models.Observation) string {
	h, _ := blake2b.New256(nil)
	for _, obs := range records {
		writeString(h, obs.Date.Format("2006-01-02T15:04:05"))
		writeString(h, obs.Area)
		writeString(h, obs.Road)
		writeString(h, obs.Weather)
		writeString(h, obs.Construction)
		for _, v := range []float64{
			obs.TrafficVolume, obs.AverageSpeed, obs.TravelTimeIndex,
			obs.CongestionLevel, obs.CapacityUtilization, obs.IncidentReports,
			obs.EnvironmentalImpact, obs.PublicTransportUsage, obs.SignalCompliance,
			obs.ParkingUsage, obs.PedestrianCyclistCount,
		} {
			writeFloat(h, v)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RouteFingerprint digests route records in load order.
func RouteFingerprint(records []models.RouteRecord) string {
	h, _ := blake2b.New256(nil)
	for _, r := range records {
		writeString(h, r.Timestamp.Format("2006-01-02T15:04:05"))
		writeString(h, r.Source)
		writeString(h, r.Destination)
		writeString(h, r.RouteID)
		writeString(h, r.TrafficLevel)
		writeString(h, r.Weather)
		writeFloat(h, r.TravelTime)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeFloat(h hash.Hash, v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	h.Write(buf[:])
}

func writeString(h hash.Hash, s string) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(len(s)))
	h.Write(buf[:])
	h.Write([]byte(s))
}
