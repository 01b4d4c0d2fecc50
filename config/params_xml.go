// Package config loads filter tunable overrides from a small XML document
// by walking its tokens with the stdlib encoding/xml decoder.
package config

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"flightekf/nav"
)

// LoadParametersXML reads path and returns a nav.Params seeded from
// nav.DefaultParams with any named <param name="..." value="..."/> elements
// overridden. Unknown element names are ignored for forward compatibility.
// A malformed numeric value leaves the corresponding field at its default
// and is reported through the returned error rather than aborting the load
// of the remaining fields.
func LoadParametersXML(path string) (nav.Params, error) {
	p := nav.DefaultParams()

	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("open params file: %w", err)
	}
	defer f.Close()

	var firstErr error
	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return p, fmt.Errorf("decode params xml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "param" {
			continue
		}
		name := attrValue(se, "name")
		value := attrValue(se, "value")
		if name == "" {
			continue
		}
		if err := applyParam(&p, name, value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return p, firstErr
}

func attrValue(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func applyParam(p *nav.Params, name, value string) error {
	switch name {
	case "covTimeStepMax":
		return setFloat(&p.CovTimeStepMax, value)
	case "covDelAngMax":
		return setFloat(&p.CovDelAngMax, value)
	case "rngFinderPitch":
		return setFloat(&p.RngFinderPitch, value)
	case "eas2tas":
		return setFloat(&p.EAS2TAS, value)
	case "yawVarScale":
		return setFloat(&p.YawVarScale, value)
	case "windVelSigma":
		return setFloat(&p.WindVelSigma, value)
	case "dAngBiasSigma":
		return setFloat(&p.DAngBiasSigma, value)
	case "dVelBiasSigma":
		return setFloat(&p.DVelBiasSigma, value)
	case "magEarthSigma":
		return setFloat(&p.MagEarthSigma, value)
	case "magBodySigma":
		return setFloat(&p.MagBodySigma, value)
	case "gndHgtSigma":
		return setFloat(&p.GndHgtSigma, value)
	case "optScaleSigma":
		return setFloat(&p.OptScaleSigma, value)
	case "vneSigma":
		return setFloat(&p.VneSigma, value)
	case "vdSigma":
		return setFloat(&p.VdSigma, value)
	case "posNeSigma":
		return setFloat(&p.PosNeSigma, value)
	case "posDSigma":
		return setFloat(&p.PosDSigma, value)
	case "magMeasurementSigma":
		return setFloat(&p.MagMeasurementSigma, value)
	case "airspeedMeasurementSigma":
		return setFloat(&p.AirspeedMeasurementSigma, value)
	case "gyroProcessNoise":
		return setFloat(&p.GyroProcessNoise, value)
	case "accelProcessNoise":
		return setFloat(&p.AccelProcessNoise, value)
	case "gateVelPos":
		return setFloat(&p.GateVelPos, value)
	case "gateMag":
		return setFloat(&p.GateMag, value)
	case "gateAirspeed":
		return setFloat(&p.GateAirspeed, value)
	case "gateRange":
		return setFloat(&p.GateRange, value)
	case "gateOptFlow":
		return setFloat(&p.GateOptFlow, value)
	case "timeoutVel":
		return setFloat(&p.TimeoutVel, value)
	case "timeoutPos":
		return setFloat(&p.TimeoutPos, value)
	case "timeoutHgt":
		return setFloat(&p.TimeoutHgt, value)
	case "timeoutMag":
		return setFloat(&p.TimeoutMag, value)
	case "timeoutRange":
		return setFloat(&p.TimeoutRange, value)
	case "fusionModeGPS":
		return setInt(&p.FusionModeGPS, value)
	case "useAirspeed":
		return setBool(&p.UseAirspeed, value)
	case "useCompass":
		return setBool(&p.UseCompass, value)
	case "useRangeFinder":
		return setBool(&p.UseRangeFinder, value)
	case "useOpticalFlow":
		return setBool(&p.UseOpticalFlow, value)
	case "statsWindowLen":
		return setInt(&p.StatsWindowLen, value)
	case "statsBiasThresh":
		return setFloat(&p.StatsBiasThresh, value)
	case "statsVarThresh":
		return setFloat(&p.StatsVarThresh, value)
	case "statsChiConf":
		return setFloat(&p.StatsChiConf, value)
	}
	return nil
}

func setFloat(dst *float64, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse float param %q: %w", value, err)
	}
	*dst = v
	return nil
}

func setInt(dst *int, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse int param %q: %w", value, err)
	}
	*dst = v
	return nil
}

func setBool(dst *bool, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse bool param %q: %w", value, err)
	}
	*dst = v
	return nil
}
