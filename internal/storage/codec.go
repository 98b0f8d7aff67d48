package storage

import (
	"encoding/json"
	"errors"

	"chromatin/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRunRecord(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRunRecord(data []byte) (model.RunRecord, error) {
	var record model.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return record, nil
}

func EncodeCurvePoints(points []model.CurvePoint) ([]byte, error) {
	return json.Marshal(points)
}

func DecodeCurvePoints(data []byte) ([]model.CurvePoint, error) {
	var points []model.CurvePoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func EncodeTraceSamples(samples []model.TraceSample) ([]byte, error) {
	return json.Marshal(samples)
}

func DecodeTraceSamples(data []byte) ([]model.TraceSample, error) {
	var samples []model.TraceSample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func EncodeDistribution(record model.DistributionRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeDistribution(data []byte) (model.DistributionRecord, error) {
	var record model.DistributionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.DistributionRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.DistributionRecord{}, err
	}
	return record, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
