package reply

import "agrichat/internal/classify"

type topic struct {
	keywords []string
	text     map[string]string
}

type advice struct {
	topics []topic
	prompt map[string]string
}

var greetingPhrases = []string{
	"hello", "hi", "hey", "good morning", "good afternoon", "good evening", "greetings",
	"hola", "buenos dias", "buenos días", "buenas tardes", "buenas noches",
	"oli otya", "gyebale ko", "gyebale",
	"habari", "jambo", "hujambo", "mambo", "shikamoo",
	"agandi", "oraire ota",
	"itye nining", "ibedo nining",
	"bonjour", "bonsoir", "salut",
	"مرحبا", "السلام عليكم", "اهلا",
	"नमस्ते", "namaste",
}

var thanksPhrases = []string{
	"thank you", "thanks", "thank", "thx", "appreciate it",
	"gracias", "asante", "asante sana", "webale", "webale nnyo", "webare",
	"apwoyo", "merci", "شكرا", "धन्यवाद", "shukriya",
}

// Polarity keys are whole tokenized messages, space padded.
var affirmatives = map[string]struct{}{
	" yes ": {}, " yeah ": {}, " yep ": {}, " sure ": {}, " yes please ": {}, " of course ": {},
	" si ": {}, " sí ": {}, " ndiyo ": {}, " yee ": {}, " ee ": {}, " oui ": {}, " نعم ": {}, " हाँ ": {}, " haan ": {},
}

var negatives = map[string]struct{}{
	" no ": {}, " nope ": {}, " not now ": {}, " hapana ": {}, " nedda ": {}, " non ": {}, " لا ": {}, " नहीं ": {},
}

var questionWords = []string{
	"what", "how", "when", "why", "which", "where", "who", "can", "could", "should", "does",
	"qué", "que", "cómo", "como", "cuándo", "cuando",
	"nini", "vipi", "lini", "kwa nini",
	"comment", "quand", "pourquoi", "quel", "quelle",
}

var greetingReplies = map[string]string{
	classify.English:    "Hello! I'm your farming assistant. Ask me about crop diseases, fertilizers, irrigation, weather or harvest timing.",
	classify.Spanish:    "¡Hola! Soy tu asistente agrícola. Pregúntame sobre enfermedades, fertilizantes, riego, clima o cosecha.",
	classify.Luganda:    "Gyebale ko! Nze muyambi wo mu by'obulimi. Mbuuza ku ndwadde z'ebirime, ebigimusa, okufukirira oba amakungula.",
	classify.Swahili:    "Habari! Mimi ni msaidizi wako wa kilimo. Niulize kuhusu magonjwa ya mimea, mbolea, umwagiliaji, hali ya hewa au mavuno.",
	classify.Runyankole: "Agandi! Ndi omuhwezi wawe w'obuhingi. Mbuuza aha ndwara z'ebihingwa, ifumbire, okufukirira n'okusharura.",
	classify.Acholi:     "Itye nining! An aye lakony mewu i pur. Penya lok ikom two me cam, cet, pii ki kac.",
	classify.Lango:      "Ibedo nining! An a kony in i pur. Penya kop i kom two me cam, cet, pii ki kac.",
	classify.French:     "Bonjour ! Je suis votre assistant agricole. Posez-moi des questions sur les maladies, les engrais, l'irrigation, la météo ou la récolte.",
	classify.Arabic:     "مرحبا! أنا مساعدك الزراعي. اسألني عن أمراض المحاصيل والأسمدة والري والطقس ومواعيد الحصاد.",
	classify.Hindi:      "नमस्ते! मैं आपका खेती सहायक हूँ। फसल रोग, खाद, सिंचाई, मौसम या कटाई के बारे में पूछें।",
}

var thanksReplies = map[string]string{
	classify.English:    "You're welcome! Let me know if you have any other farming questions.",
	classify.Spanish:    "¡De nada! Avísame si tienes otras preguntas sobre agricultura.",
	classify.Luganda:    "Kale, tewali buzibu! Mbuuza ekirala kyonna ku bulimi.",
	classify.Swahili:    "Karibu! Niulize swali lingine lolote kuhusu kilimo.",
	classify.Runyankole: "Nimwebare! Mbuuza ekindi kyona aha buhingi.",
	classify.Acholi:     "Pe tye peko! Penya lapeny mukene i kom pur.",
	classify.Lango:      "Pe tye peko! Penya kop mukene i kom pur.",
	classify.French:     "Je vous en prie ! N'hésitez pas si vous avez d'autres questions agricoles.",
	classify.Arabic:     "على الرحب والسعة! أخبرني إذا كان لديك أي أسئلة زراعية أخرى.",
	classify.Hindi:      "आपका स्वागत है! खेती से जुड़ा कोई और सवाल हो तो पूछें।",
}

var yesReplies = map[string]string{
	classify.English: "Great! What would you like to know more about?",
	classify.Spanish: "¡Genial! ¿Sobre qué te gustaría saber más?",
	classify.Swahili: "Vizuri! Ungependa kujua zaidi kuhusu nini?",
	classify.French:  "Très bien ! Sur quoi souhaitez-vous en savoir plus ?",
}

var noReplies = map[string]string{
	classify.English: "Okay. Feel free to ask whenever you need farming advice.",
	classify.Spanish: "Está bien. Pregunta cuando necesites consejos agrícolas.",
	classify.Swahili: "Sawa. Uliza wakati wowote unapohitaji ushauri wa kilimo.",
	classify.French:  "D'accord. N'hésitez pas à revenir quand vous aurez besoin de conseils.",
}

var fallbackReplies = map[string]string{
	classify.English:    "I'm not sure about that. Try asking about diseases, fertilizers, irrigation, weather, or harvest timing.",
	classify.Spanish:    "No estoy seguro de eso. Intenta preguntar sobre enfermedades, fertilizantes, riego, clima o momento de cosecha.",
	classify.Luganda:    "Sikakasa ku ekyo. Gezaako okubuuza ku ndwadde, ebigimusa, okufukirira, obudde oba amakungula.",
	classify.Swahili:    "Sina uhakika kuhusu hilo. Jaribu kuuliza kuhusu magonjwa, mbolea, umwagiliaji, hali ya hewa au mavuno.",
	classify.Runyankole: "Tindikumanya kurungi. Gyezaho okubuuza aha ndwara, ifumbire, okufukirira, obwire n'okusharura.",
	classify.Acholi:     "Pe angeyo maber. Tem penyo i kom two, cet, pii, kare ki kac.",
	classify.Lango:      "Pe angeo maber. Tem penyo i kom two, cet, pii, kare ki kac.",
	classify.French:     "Je ne suis pas sûr. Essayez de demander sur les maladies, les engrais, l'irrigation, la météo ou la récolte.",
	classify.Arabic:     "لست متأكدا من ذلك. حاول السؤال عن الأمراض أو الأسمدة أو الري أو الطقس أو موعد الحصاد.",
	classify.Hindi:      "मुझे इसके बारे में पक्का नहीं पता। रोग, खाद, सिंचाई, मौसम या कटाई के बारे में पूछें।",
}

var intentAdvice = map[string]advice{
	classify.IntentDisease: {
		topics: []topic{
			{
				keywords: []string{"tomato", "blight", "leaf spot", "potato"},
				text: map[string]string{
					classify.English: "Tomato and potato blight: remove and destroy infected leaves, avoid overhead watering, and space plants for airflow. Treat with a copper-based fungicide or mancozeb every 7 to 10 days in wet weather, and rotate away from tomatoes, potatoes and peppers for at least two seasons.",
					classify.Spanish: "Tizón del tomate y la papa: elimina y destruye las hojas infectadas, evita el riego por aspersión y deja espacio entre plantas. Trata con un fungicida a base de cobre o mancozeb cada 7 a 10 días en tiempo húmedo y rota cultivos al menos dos temporadas.",
					classify.Swahili: "Ukungu wa nyanya na viazi: ondoa na uchome majani yaliyoathirika, epuka kumwagilia juu ya majani na acha nafasi kati ya mimea. Nyunyizia dawa ya shaba au mancozeb kila siku 7 hadi 10 wakati wa mvua, na badilisha mazao kwa misimu miwili.",
				},
			},
			{
				keywords: []string{"armyworm", "caterpillar", "maize", "stalk borer"},
				text: map[string]string{
					classify.English: "Fall armyworm and stalk borers in maize: scout twice a week for ragged holes and sawdust-like frass in the funnel. On small plots hand-pick egg masses and larvae or put a pinch of sand and ash in the funnel. If more than 20% of plants are attacked, treat early with a recommended insecticide such as emamectin benzoate, spraying in the early morning or evening.",
					classify.Swahili: "Viwavi jeshi na vipekecha kwenye mahindi: kagua shamba mara mbili kwa wiki. Kwenye shamba dogo okota mayai na viwavi kwa mkono au weka mchanga na majivu kwenye kikonyo. Zaidi ya asilimia 20 ya mimea ikishambuliwa, tumia dawa inayopendekezwa kama emamectin benzoate asubuhi au jioni.",
				},
			},
			{
				keywords: []string{"aphid", "whitefly", "insect", "bug", "pest", "mite"},
				text: map[string]string{
					classify.English: "For sap-sucking insects like aphids, whiteflies and mites: check the undersides of leaves, encourage ladybirds and other natural enemies, and spray neem oil or a mild soap solution. Use chemical insecticides only when numbers are high, and always observe the pre-harvest interval on the label.",
					classify.Spanish: "Para insectos chupadores como pulgones, mosca blanca y ácaros: revisa el envés de las hojas, favorece a las mariquitas y aplica aceite de neem o una solución suave de jabón. Usa insecticidas químicos solo con poblaciones altas y respeta el plazo de seguridad.",
				},
			},
			{
				keywords: []string{"fung", "mildew", "mould", "mold", "wilt", "rust"},
				text: map[string]string{
					classify.English: "Fungal diseases such as mildew, rust and wilt spread in humid, crowded fields. Improve drainage and spacing, pull out and burn badly infected plants, water at the base in the morning, and apply a sulphur or copper fungicide as a preventive during the rains. Choose resistant varieties next season.",
				},
			},
		},
		prompt: map[string]string{
			classify.English: "I can help with disease management. Please describe the symptoms you're seeing on your crops.",
			classify.Spanish: "Puedo ayudar con el manejo de enfermedades. Por favor describe los síntomas que ves en tus cultivos.",
			classify.Swahili: "Ninaweza kusaidia kudhibiti magonjwa. Tafadhali eleza dalili unazoziona kwenye mazao yako.",
			classify.French:  "Je peux vous aider à gérer les maladies. Décrivez les symptômes que vous voyez sur vos cultures.",
		},
	},
	classify.IntentFertilizer: {
		topics: []topic{
			{
				keywords: []string{"acid", "ph", "lime", "soil test"},
				text: map[string]string{
					classify.English: "Start with a soil test. Most crops prefer a pH between 6.0 and 7.0. If your soil is acidic, apply agricultural lime two to four weeks before planting. The test also shows which nutrients are low, so you only buy the fertilizer you need.",
					classify.Spanish: "Empieza con un análisis de suelo. La mayoría de los cultivos prefieren un pH entre 6,0 y 7,0. Si el suelo es ácido, aplica cal agrícola de dos a cuatro semanas antes de sembrar.",
				},
			},
			{
				keywords: []string{"compost", "manure", "organic"},
				text: map[string]string{
					classify.English: "Compost and well-rotted manure improve soil structure and feed crops slowly. Apply about two wheelbarrows per 10 square metres and mix into the topsoil before planting. Keep fresh manure away from seedlings because it can burn roots.",
					classify.Swahili: "Mboji na samadi iliyooza vizuri huboresha udongo na kulisha mimea taratibu. Weka takriban toroli mbili kwa mita za mraba 10 na uchanganye na udongo kabla ya kupanda.",
				},
			},
			{
				keywords: []string{"npk", "urea", "dap", "nitrogen", "yellow", "top dress", "topdress"},
				text: map[string]string{
					classify.English: "For cereals like maize, apply a phosphorus-rich fertilizer such as DAP at planting, then top-dress with nitrogen (CAN or urea) when plants are knee-high. Yellowing of older leaves usually means nitrogen deficiency. Apply fertilizer to moist soil and cover it to reduce losses.",
					classify.Swahili: "Kwa nafaka kama mahindi, weka mbolea yenye fosforasi kama DAP wakati wa kupanda, kisha ongeza naitrojeni (CAN au urea) mimea ikifika magotini. Majani ya chini kuwa manjano mara nyingi ni upungufu wa naitrojeni.",
				},
			},
		},
		prompt: map[string]string{
			classify.English: "For fertilizer advice, I recommend checking your soil pH and nutrient levels first.",
			classify.Spanish: "Para consejos sobre fertilizantes, recomiendo verificar primero el pH del suelo y los niveles de nutrientes.",
			classify.Swahili: "Kwa ushauri wa mbolea, nashauri upime kwanza pH ya udongo na kiwango cha virutubisho.",
			classify.French:  "Pour les engrais, je vous conseille de vérifier d'abord le pH et les nutriments de votre sol.",
		},
	},
	classify.IntentIrrigation: {
		topics: []topic{
			{
				keywords: []string{"drip"},
				text: map[string]string{
					classify.English: "Drip irrigation delivers water straight to the roots and can use half the water of furrow irrigation. It suits vegetables and orchards. Fit a filter, flush the lines every few weeks, and check emitters for clogging.",
				},
			},
			{
				keywords: []string{"drought", "dry", "shortage", "little rain", "no rain"},
				text: map[string]string{
					classify.English: "During drought, mulch the soil surface to hold moisture, water early in the morning or in the evening, and give priority to crops that are flowering or setting fruit. Sorghum, millet, cassava and sweet potato tolerate dry spells well.",
					classify.Swahili: "Wakati wa ukame, funika udongo kwa matandazo, mwagilia asubuhi mapema au jioni, na tanguliza mimea inayotoa maua au matunda. Mtama, uwele, mihogo na viazi vitamu huvumilia ukame.",
				},
			},
			{
				keywords: []string{"how much", "how often", "schedule", "every day", "daily"},
				text: map[string]string{
					classify.English: "Most crops need about 25 to 50 mm of water a week. Water deeply but less often to encourage deep roots, and check the soil 10 cm down: if it is dry, it is time to water.",
					classify.Spanish: "La mayoría de los cultivos necesitan de 25 a 50 mm de agua por semana. Riega profundo y con menos frecuencia, y revisa el suelo a 10 cm: si está seco, es hora de regar.",
				},
			},
		},
		prompt: map[string]string{
			classify.English: "Proper irrigation depends on your crop type and soil conditions. How much rainfall have you had recently?",
			classify.Spanish: "El riego adecuado depende del tipo de cultivo y las condiciones del suelo. ¿Cuánta lluvia ha habido recientemente?",
			classify.Swahili: "Umwagiliaji sahihi unategemea aina ya zao na hali ya udongo. Mvua imenyesha kiasi gani hivi karibuni?",
		},
	},
	classify.IntentWeather: {
		topics: []topic{
			{
				keywords: []string{"frost", "cold"},
				text: map[string]string{
					classify.English: "To protect crops from frost, water the soil the afternoon before a cold night, cover seedlings with cloth or straw, and avoid planting frost-sensitive crops in low-lying spots where cold air settles.",
				},
			},
			{
				keywords: []string{"heat", "hot", "temperature"},
				text: map[string]string{
					classify.English: "High temperatures stress crops, especially at flowering. Mulch to keep roots cool, water in the early morning, use shade nets for nurseries, and choose heat-tolerant varieties.",
				},
			},
			{
				keywords: []string{"season", "forecast", "planting", "when to plant"},
				text: map[string]string{
					classify.English: "Plan planting around the onset of the rains: plant once the topsoil is moist to about 15 cm. Follow your national meteorological service's seasonal forecast and stagger planting dates to spread risk.",
					classify.Swahili: "Panga kupanda kulingana na mwanzo wa mvua: panda udongo ukiwa na unyevu hadi sentimita 15. Fuata utabiri wa msimu wa mamlaka ya hali ya hewa.",
				},
			},
		},
		prompt: map[string]string{
			classify.English: "Weather can significantly impact crop yields. What region are you farming in?",
			classify.Spanish: "El clima puede impactar significativamente los rendimientos. ¿En qué región estás cultivando?",
			classify.Swahili: "Hali ya hewa inaweza kuathiri sana mavuno. Unalima katika eneo gani?",
		},
	},
	classify.IntentHarvest: {
		topics: []topic{
			{
				keywords: []string{"maize", "grain", "bean", "sorghum", "millet"},
				text: map[string]string{
					classify.English: "Harvest maize when the husks are dry and kernels show a black layer at the base; harvest beans when most pods are dry and rattle. Dry grain to about 13% moisture before storage to prevent mould and aflatoxin.",
					classify.Swahili: "Vuna mahindi maganda yakikauka na punje zikiwa na doa jeusi chini; vuna maharagwe maganda mengi yakikauka. Kausha nafaka hadi unyevu wa asilimia 13 kabla ya kuhifadhi.",
				},
			},
			{
				keywords: []string{"tomato", "fruit", "vegetable", "cabbage"},
				text: map[string]string{
					classify.English: "Pick tomatoes at the breaker stage when they first change colour; they ripen well off the vine and travel better. Harvest leafy vegetables in the cool of the morning and keep them in the shade.",
				},
			},
			{
				keywords: []string{"store", "storage", "weevil"},
				text: map[string]string{
					classify.English: "Store dry grain in clean hermetic bags or silos raised off the floor. Inspect regularly for weevils and keep the store cool, dry and well ventilated.",
				},
			},
		},
		prompt: map[string]string{
			classify.English: "Great question about harvesting! The right time depends on your crop. What are you growing?",
			classify.Spanish: "¡Gran pregunta sobre la cosecha! El momento adecuado depende de tu cultivo. ¿Qué estás cultivando?",
			classify.Swahili: "Swali zuri kuhusu mavuno! Wakati sahihi unategemea zao lako. Unalima nini?",
		},
	},
}

// generalRedirects run only for the general intent. Through DetectIntent,
// "crop", "soil" and "pest" always classify as harvest, fertilizer and
// disease first, so only "plant" and "grow" reach here from chat; the
// other entries answer callers that pass the general intent themselves.
var generalRedirects = []topic{
	{
		keywords: []string{"crop", "plant", "grow"},
		text: map[string]string{
			classify.English: "I can help you grow better crops. Tell me which crop you are growing and what you need: planting time, spacing, fertilizer, pests or harvest.",
			classify.Spanish: "Puedo ayudarte a cultivar mejor. Dime qué cultivo tienes y qué necesitas: siembra, distancia, fertilizante, plagas o cosecha.",
			classify.Swahili: "Ninaweza kukusaidia kulima vizuri. Niambie unalima zao gani na unahitaji nini: wakati wa kupanda, nafasi, mbolea, wadudu au mavuno.",
		},
	},
	{
		keywords: []string{"soil"},
		text: map[string]string{
			classify.English: "Healthy soil is the base of good yields. Ask me about soil testing, pH, compost or fertilizer and I'll give you specific advice.",
		},
	},
	{
		keywords: []string{"pest"},
		text: map[string]string{
			classify.English: "Tell me which pest you are seeing and on which crop, and I'll suggest ways to control it.",
		},
	},
}
