package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStand_JSONShape(t *testing.T) {
	voltage := "220V"
	stand := Stand{
		ID:         10,
		Status:     StatusPendingPartnerReview,
		StandLinks: StandLinks{TechnicalDrawingLink: "https://cdn.test/plan.pdf"},
		StandRequirements: StandRequirements{
			AV:           AVRequirements{EquipmentList: "2x screens"},
			PowerVoltage: &voltage,
		},
	}

	data, err := json.Marshal(stand)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, "https://cdn.test/plan.pdf", fields["technical_drawing_link"])
	assert.Equal(t, "220V", fields["power_voltage"])
	assert.Contains(t, fields, "power_outlets")
	assert.Contains(t, fields, "special_requirements")
	assert.Equal(t, map[string]interface{}{"equipment_list": "2x screens", "special_instructions": ""}, fields["av_requirements"])
	assert.NotContains(t, fields, "links")
	assert.NotContains(t, fields, "requirements")

	value, ok := fields["booth_construction_type"]
	assert.True(t, ok)
	assert.Nil(t, value)

	var back Stand
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ConstructionUnset, back.BoothConstructionType)
	assert.Equal(t, stand.StandLinks, back.StandLinks)
}

func TestConstructionType_JSON(t *testing.T) {
	data, err := json.Marshal(ConstructionSEFBuilt)
	require.NoError(t, err)
	assert.JSONEq(t, `"sef_built"`, string(data))

	var ct ConstructionType
	require.NoError(t, json.Unmarshal([]byte(`"partner_built"`), &ct))
	assert.Equal(t, ConstructionPartnerBuilt, ct)

	require.NoError(t, json.Unmarshal([]byte(`null`), &ct))
	assert.Equal(t, ConstructionUnset, ct)
}
