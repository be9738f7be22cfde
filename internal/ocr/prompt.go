package ocr

// Prompt is the fixed instruction sent with every document. It names the
// exact JSON keys that FieldsFromMap reads.
const Prompt = `You are reading a scanned notice of violation (summons) for vehicle idling.
Return a single JSON object and nothing else. Use exactly these keys:

  "license_plate"         the vehicle's license plate, as printed
  "id_number"             the complaint identifier (see below)
  "vehicle_type"          the vehicle type or body style, e.g. "truck", "bus"
  "prior_offense_status"  whether the respondent has prior offenses, as stated
  "violation_narrative"   the full narrative describing the violation
  "idling_duration"       how long the engine idled, as stated, e.g. "5 minutes"
  "respondent_name"       the name of the respondent or registered owner
  "critical_flags"        an array of short strings for anything a reviewer must see,
                          such as a missing signature or an illegible field

The id_number is the complaint identifier written as four digits, a hyphen,
and five or six digits (for example "2024-012345"). Do NOT return the long
summons number printed at the top of the form: it is nine or more digits,
sometimes followed by a single letter (for example "000123456789K"). If the
only identifier you can find is the long summons number, return null for
id_number.

Use null for any field you cannot read with confidence. Do not guess.
Do not wrap the JSON in markdown fences or add commentary.`
